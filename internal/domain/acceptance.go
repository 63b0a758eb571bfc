package domain

import "time"

// Acceptance is one principal's claim on a job.
type Acceptance struct {
	ID              string
	JobID           string
	AcceptedByName  string
	AcceptedByEmail string
	AcceptedAt      time.Time

	// Job snapshot taken at acceptance time.
	Title         string
	Category      Category
	Summary       string
	CoverImageURL string
	PosterEmail   string
}

// HeldBy reports whether the principal is the accepter.
func (a *Acceptance) HeldBy(p *Principal) bool {
	return p != nil && SameEmail(a.AcceptedByEmail, p.Email)
}

// CloseReason distinguishes completed from abandoned acceptances.
type CloseReason string

const (
	CloseDone   CloseReason = "done"
	CloseCancel CloseReason = "cancel"
)

// ParseCloseReason defaults to done.
func ParseCloseReason(val string) CloseReason {
	if CloseReason(val) == CloseCancel {
		return CloseCancel
	}
	return CloseDone
}
