package events

import (
	"time"

	"github.com/spec-kit/job-board/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventJobCreated       EventType = "job_created"
	EventJobUpdated       EventType = "job_updated"
	EventJobDeleted       EventType = "job_deleted"
	EventJobAccepted      EventType = "job_accepted"
	EventAcceptanceClosed EventType = "acceptance_closed"
)

// AllEventTypes lists every type a broker publisher subscribes to.
var AllEventTypes = []EventType{
	EventJobCreated,
	EventJobUpdated,
	EventJobDeleted,
	EventJobAccepted,
	EventAcceptanceClosed,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	JobID      string    `json:"job_id"`
	ActorEmail string    `json:"actor_email"`
	Timestamp  time.Time `json:"timestamp"`
	Payload    any       `json:"payload"`
}

// JobPayload describes a created or updated posting.
type JobPayload struct {
	Title       string          `json:"title"`
	Category    domain.Category `json:"category"`
	PosterEmail string          `json:"poster_email"`
}

// JobDeletedPayload reports whether the delete closed an active acceptance.
type JobDeletedPayload struct {
	HadAcceptance bool `json:"had_acceptance"`
}

// JobAcceptedPayload payload.
type JobAcceptedPayload struct {
	AcceptanceID    string `json:"acceptance_id"`
	AcceptedByEmail string `json:"accepted_by_email"`
	PosterEmail     string `json:"poster_email"`
}

// AcceptanceClosedPayload payload.
type AcceptanceClosedPayload struct {
	AcceptanceID string             `json:"acceptance_id"`
	Reason       domain.CloseReason `json:"reason"`
}
