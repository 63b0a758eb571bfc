package dto

import (
	"time"

	"github.com/spec-kit/job-board/internal/domain"
)

// CreateJobRequest payload. Poster fields are taken from the caller's token.
type CreateJobRequest struct {
	Title         string          `json:"title"`
	Category      domain.Category `json:"category"`
	Summary       string          `json:"summary"`
	CoverImageURL string          `json:"cover_image_url"`
}

// Draft converts the request into a domain draft.
func (r CreateJobRequest) Draft() domain.JobDraft {
	return domain.JobDraft{
		Title:         r.Title,
		Category:      r.Category,
		Summary:       r.Summary,
		CoverImageURL: r.CoverImageURL,
	}
}

// NewCreateJobRequest builds the payload for a draft.
func NewCreateJobRequest(d domain.JobDraft) CreateJobRequest {
	return CreateJobRequest{Title: d.Title, Category: d.Category, Summary: d.Summary, CoverImageURL: d.CoverImageURL}
}

// UpdateJobRequest payload; omitted fields are left unchanged.
type UpdateJobRequest struct {
	Title         *string          `json:"title,omitempty"`
	Category      *domain.Category `json:"category,omitempty"`
	Summary       *string          `json:"summary,omitempty"`
	CoverImageURL *string          `json:"cover_image_url,omitempty"`
}

// Patch converts the request into a domain patch.
func (r UpdateJobRequest) Patch() domain.JobPatch {
	return domain.JobPatch{
		Title:         r.Title,
		Category:      r.Category,
		Summary:       r.Summary,
		CoverImageURL: r.CoverImageURL,
	}
}

// NewUpdateJobRequest builds the payload for a patch.
func NewUpdateJobRequest(p domain.JobPatch) UpdateJobRequest {
	return UpdateJobRequest{Title: p.Title, Category: p.Category, Summary: p.Summary, CoverImageURL: p.CoverImageURL}
}

// JobResponse is the wire form of a posting.
type JobResponse struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Category      domain.Category `json:"category"`
	Summary       string          `json:"summary"`
	CoverImageURL string          `json:"cover_image_url"`
	PostedByName  string          `json:"posted_by_name"`
	PosterEmail   string          `json:"poster_email"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewJobResponse maps a domain job.
func NewJobResponse(job *domain.Job) JobResponse {
	return JobResponse{
		ID:            job.ID,
		Title:         job.Title,
		Category:      job.Category,
		Summary:       job.Summary,
		CoverImageURL: job.CoverImageURL,
		PostedByName:  job.PostedByName,
		PosterEmail:   job.PosterEmail,
		CreatedAt:     job.CreatedAt,
	}
}

// Domain maps the response back to a domain job.
func (r JobResponse) Domain() domain.Job {
	return domain.Job{
		ID:            r.ID,
		Title:         r.Title,
		Category:      r.Category,
		Summary:       r.Summary,
		CoverImageURL: r.CoverImageURL,
		PostedByName:  r.PostedByName,
		PosterEmail:   r.PosterEmail,
		CreatedAt:     r.CreatedAt,
	}
}

// NewJobList maps a slice of jobs, never returning nil.
func NewJobList(jobs []domain.Job) []JobResponse {
	items := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		items = append(items, NewJobResponse(&jobs[i]))
	}
	return items
}
