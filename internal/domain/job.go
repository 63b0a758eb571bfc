package domain

import "time"

// Category enumerates the fixed set of job categories.
type Category string

const (
	CategoryWebDevelopment   Category = "Web Development"
	CategoryGraphicsDesign   Category = "Graphics Design"
	CategoryDigitalMarketing Category = "Digital Marketing"
	CategorySEO              Category = "SEO"
	CategoryVideoEditing     Category = "Video Editing"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryWebDevelopment,
	CategoryGraphicsDesign,
	CategoryDigitalMarketing,
	CategorySEO,
	CategoryVideoEditing,
}

// Valid reports whether c belongs to the fixed set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// SortOrder orders job listings by creation time.
type SortOrder string

const (
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

// ParseSortOrder defaults to newest first.
func ParseSortOrder(val string) SortOrder {
	if SortOrder(val) == SortAsc {
		return SortAsc
	}
	return SortDesc
}

// Job is a posting offered by its poster.
type Job struct {
	ID            string
	Title         string
	Category      Category
	Summary       string
	CoverImageURL string
	PostedByName  string
	PosterEmail   string
	CreatedAt     time.Time
}

// OwnedBy reports whether the principal is the poster.
func (j *Job) OwnedBy(p *Principal) bool {
	return p != nil && SameEmail(j.PosterEmail, p.Email)
}

// JobDraft holds client-editable fields of a new posting.
type JobDraft struct {
	Title         string
	Category      Category
	Summary       string
	CoverImageURL string
}

// JobPatch holds owner-editable fields; nil leaves a field unchanged.
type JobPatch struct {
	Title         *string
	Category      *Category
	Summary       *string
	CoverImageURL *string
}

// JobFilter narrows job listings.
type JobFilter struct {
	PosterEmail string
	Sort        SortOrder
	Limit       int
}
