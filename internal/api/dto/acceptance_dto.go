package dto

import (
	"time"

	"github.com/spec-kit/job-board/internal/domain"
)

// AcceptJobRequest payload for POST /accepted.
type AcceptJobRequest struct {
	JobID string `json:"job_id"`
}

// AcceptanceResponse is the wire form of an acceptance record with its job snapshot.
type AcceptanceResponse struct {
	ID              string          `json:"id"`
	JobID           string          `json:"job_id"`
	AcceptedByName  string          `json:"accepted_by_name"`
	AcceptedByEmail string          `json:"accepted_by_email"`
	AcceptedAt      time.Time       `json:"accepted_at"`
	Title           string          `json:"title"`
	Category        domain.Category `json:"category"`
	Summary         string          `json:"summary"`
	CoverImageURL   string          `json:"cover_image_url"`
	PosterEmail     string          `json:"poster_email"`
}

// NewAcceptanceResponse maps a domain record.
func NewAcceptanceResponse(a *domain.Acceptance) AcceptanceResponse {
	return AcceptanceResponse{
		ID:              a.ID,
		JobID:           a.JobID,
		AcceptedByName:  a.AcceptedByName,
		AcceptedByEmail: a.AcceptedByEmail,
		AcceptedAt:      a.AcceptedAt,
		Title:           a.Title,
		Category:        a.Category,
		Summary:         a.Summary,
		CoverImageURL:   a.CoverImageURL,
		PosterEmail:     a.PosterEmail,
	}
}

// Domain maps the response back to a domain record.
func (r AcceptanceResponse) Domain() domain.Acceptance {
	return domain.Acceptance{
		ID:              r.ID,
		JobID:           r.JobID,
		AcceptedByName:  r.AcceptedByName,
		AcceptedByEmail: r.AcceptedByEmail,
		AcceptedAt:      r.AcceptedAt,
		Title:           r.Title,
		Category:        r.Category,
		Summary:         r.Summary,
		CoverImageURL:   r.CoverImageURL,
		PosterEmail:     r.PosterEmail,
	}
}

// NewAcceptanceList maps a slice of records, never returning nil.
func NewAcceptanceList(records []domain.Acceptance) []AcceptanceResponse {
	items := make([]AcceptanceResponse, 0, len(records))
	for i := range records {
		items = append(items, NewAcceptanceResponse(&records[i]))
	}
	return items
}
