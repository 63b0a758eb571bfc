// Package lifecycle holds the job posting state machine and the guards shared by the
// job service and the client workflow.
package lifecycle

import (
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/job-board/internal/domain"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// State is the lifecycle position of a posting as seen by one principal.
type State string

const (
	StateDraft    State = "DRAFT"
	StateOpen     State = "OPEN"
	StateAccepted State = "ACCEPTED"
	StateClosed   State = "CLOSED"
	StateDeleted  State = "DELETED"
)

// Event triggers a transition.
type Event string

const (
	EventCreate Event = "create"
	EventUpdate Event = "update"
	EventAccept Event = "accept"
	EventDone   Event = "done"
	EventCancel Event = "cancel"
	EventDelete Event = "delete"
)

// ErrInvalidTransition is returned when an event does not apply to a state.
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

var transitions = map[State]map[Event]State{
	StateDraft: {
		EventCreate: StateOpen,
	},
	StateOpen: {
		EventUpdate: StateOpen,
		EventAccept: StateAccepted,
		EventDelete: StateDeleted,
	},
	StateAccepted: {
		EventDone:   StateClosed,
		EventCancel: StateClosed,
		EventDelete: StateDeleted,
	},
	StateClosed:  {},
	StateDeleted: {},
}

// Transition returns the state reached by applying event to from.
func Transition(from State, event Event) (State, error) {
	next, ok := transitions[from][event]
	if !ok {
		return from, ErrInvalidTransition
	}
	return next, nil
}

// StateOf derives the state of a persisted job from its acceptance, if any.
func StateOf(job *domain.Job, acceptance *domain.Acceptance) State {
	switch {
	case job == nil:
		return StateDeleted
	case acceptance != nil:
		return StateAccepted
	default:
		return StateOpen
	}
}

// ValidateDraft trims the draft and checks required fields.
func ValidateDraft(draft domain.JobDraft) (domain.JobDraft, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Summary = strings.TrimSpace(draft.Summary)
	draft.CoverImageURL = strings.TrimSpace(draft.CoverImageURL)
	draft.Category = domain.Category(strings.TrimSpace(string(draft.Category)))

	missing := []string{}
	if draft.Title == "" {
		missing = append(missing, "title")
	}
	if draft.Category == "" {
		missing = append(missing, "category")
	}
	if draft.Summary == "" {
		missing = append(missing, "summary")
	}
	if len(missing) > 0 {
		return draft, apperrors.NewValidationError(strings.Join(missing, ", ")+" required",
			map[string]any{"missing": missing})
	}
	if !draft.Category.Valid() {
		return draft, apperrors.NewValidationError("unknown category",
			map[string]any{"category": draft.Category, "allowed": domain.Categories})
	}
	return draft, nil
}

// NewPosting builds the Open posting for a validated draft. Poster fields come only from
// the principal.
func NewPosting(draft domain.JobDraft, principal *domain.Principal, now time.Time) (*domain.Job, error) {
	if principal == nil || principal.Email == "" {
		return nil, apperrors.NewUnauthorized("please log in to post a job")
	}
	if _, err := Transition(StateDraft, EventCreate); err != nil {
		return nil, err
	}
	draft, err := ValidateDraft(draft)
	if err != nil {
		return nil, err
	}
	return &domain.Job{
		Title:         draft.Title,
		Category:      draft.Category,
		Summary:       draft.Summary,
		CoverImageURL: draft.CoverImageURL,
		PostedByName:  principal.Name(),
		PosterEmail:   principal.Email,
		CreatedAt:     now,
	}, nil
}

// CanMutateJob allows update and delete only for the poster.
func CanMutateJob(job *domain.Job, principal *domain.Principal) error {
	if principal == nil || principal.Email == "" {
		return apperrors.NewUnauthorized("please log in first")
	}
	if !job.OwnedBy(principal) {
		return apperrors.NewForbidden("only the poster can change this job")
	}
	return nil
}

// ApplyPatch returns a copy of job with the patch applied. Identity and ownership
// fields never change.
func ApplyPatch(job *domain.Job, patch domain.JobPatch) (*domain.Job, error) {
	if _, err := Transition(StateOpen, EventUpdate); err != nil {
		return nil, err
	}
	updated := *job
	draft := domain.JobDraft{
		Title:         job.Title,
		Category:      job.Category,
		Summary:       job.Summary,
		CoverImageURL: job.CoverImageURL,
	}
	if patch.Title != nil {
		draft.Title = *patch.Title
	}
	if patch.Category != nil {
		draft.Category = *patch.Category
	}
	if patch.Summary != nil {
		draft.Summary = *patch.Summary
	}
	if patch.CoverImageURL != nil {
		draft.CoverImageURL = *patch.CoverImageURL
	}
	draft, err := ValidateDraft(draft)
	if err != nil {
		return nil, err
	}
	updated.Title = draft.Title
	updated.Category = draft.Category
	updated.Summary = draft.Summary
	updated.CoverImageURL = draft.CoverImageURL
	return &updated, nil
}

// CanAccept checks the guards of accepting an open job. existing is the job's current
// acceptance, if any; at most one acceptance per job is allowed.
func CanAccept(job *domain.Job, principal *domain.Principal, existing *domain.Acceptance) error {
	if principal == nil || principal.Email == "" {
		return apperrors.NewUnauthorized("please log in to accept a job")
	}
	if job.OwnedBy(principal) {
		return apperrors.NewForbidden("you cannot accept your own job")
	}
	if existing != nil {
		if existing.HeldBy(principal) {
			return apperrors.NewDuplicateAcceptance(job.ID)
		}
		return apperrors.NewConflict("job already accepted by someone else", map[string]any{"job_id": job.ID})
	}
	if _, err := Transition(StateOf(job, existing), EventAccept); err != nil {
		return err
	}
	return nil
}

// NewAcceptance builds the record created by a successful accept.
func NewAcceptance(job *domain.Job, principal *domain.Principal, now time.Time) *domain.Acceptance {
	return &domain.Acceptance{
		JobID:           job.ID,
		AcceptedByName:  principal.Name(),
		AcceptedByEmail: principal.Email,
		AcceptedAt:      now,
		Title:           job.Title,
		Category:        job.Category,
		Summary:         job.Summary,
		CoverImageURL:   job.CoverImageURL,
		PosterEmail:     job.PosterEmail,
	}
}

// CanCloseAcceptance restricts done/cancel to the accepter.
func CanCloseAcceptance(record *domain.Acceptance, principal *domain.Principal) error {
	if principal == nil || principal.Email == "" {
		return apperrors.NewUnauthorized("please log in first")
	}
	if !record.HeldBy(principal) {
		return apperrors.NewForbidden("only the accepting user can close this task")
	}
	return nil
}

// CloseEvent maps a close reason to its lifecycle event.
func CloseEvent(reason domain.CloseReason) Event {
	if reason == domain.CloseCancel {
		return EventCancel
	}
	return EventDone
}
