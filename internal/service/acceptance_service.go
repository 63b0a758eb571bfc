package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/events"
	"github.com/spec-kit/job-board/internal/lifecycle"
	"github.com/spec-kit/job-board/internal/repository"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// AcceptanceService handles accepting jobs and closing acceptances.
type AcceptanceService struct {
	jobs        repository.JobRepository
	acceptances repository.AcceptanceRepository
	dispatcher  events.Dispatcher
	metrics     TransitionRecorder
	logger      *zap.Logger
	now         func() time.Time
}

// AcceptanceDependencies bundles collaborators.
type AcceptanceDependencies struct {
	JobRepo        repository.JobRepository
	AcceptanceRepo repository.AcceptanceRepository
	Dispatcher     events.Dispatcher
	Metrics        TransitionRecorder
	Logger         *zap.Logger
}

// NewAcceptanceService creates the service.
func NewAcceptanceService(deps AcceptanceDependencies) *AcceptanceService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcceptanceService{
		jobs:        deps.JobRepo,
		acceptances: deps.AcceptanceRepo,
		dispatcher:  deps.Dispatcher,
		metrics:     recorderOrNop(deps.Metrics),
		logger:      logger,
		now:         time.Now,
	}
}

// Accept records the principal's acceptance of an Open job.
func (s *AcceptanceService) Accept(ctx context.Context, principal *domain.Principal, jobID string) (*domain.Acceptance, error) {
	if principal == nil || principal.Email == "" {
		return nil, apperrors.NewUnauthorized("please log in to accept a job")
	}
	if strings.TrimSpace(jobID) == "" {
		return nil, apperrors.NewValidationError("job_id required", nil)
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFoundOr(err, "job", "job_id", jobID)
	}
	existing, err := s.currentAcceptance(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanAccept(job, principal, existing); err != nil {
		return nil, err
	}

	record := lifecycle.NewAcceptance(job, principal, s.now().UTC())
	if err := s.acceptances.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrJobAlreadyAccepted) {
			// lost a race; report against whoever won
			winner, lookupErr := s.currentAcceptance(ctx, jobID)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if guardErr := lifecycle.CanAccept(job, principal, winner); guardErr != nil {
				return nil, guardErr
			}
			return nil, apperrors.NewConflict("job already accepted by someone else", map[string]any{"job_id": jobID})
		}
		return nil, apperrors.MapError(err)
	}

	s.metrics.RecordTransition(string(lifecycle.EventAccept))
	s.logger.Info("job accepted", zap.String("job_id", jobID), zap.String("accepted_by", principal.Email))
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:       events.EventJobAccepted,
		JobID:      jobID,
		ActorEmail: principal.Email,
		Payload: events.JobAcceptedPayload{
			AcceptanceID:    record.ID,
			AcceptedByEmail: record.AcceptedByEmail,
			PosterEmail:     record.PosterEmail,
		},
	})
	return record, nil
}

// ListForPrincipal returns the acceptances held by email, which must be the caller's own.
// An empty email means the caller.
func (s *AcceptanceService) ListForPrincipal(ctx context.Context, principal *domain.Principal, email string) ([]domain.Acceptance, error) {
	if principal == nil || principal.Email == "" {
		return nil, apperrors.NewUnauthorized("please log in first")
	}
	if strings.TrimSpace(email) == "" {
		email = principal.Email
	}
	if !domain.SameEmail(email, principal.Email) {
		return nil, apperrors.NewForbidden("you can only list your own accepted tasks")
	}
	records, err := s.acceptances.ListByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return records, nil
}

// Close ends an acceptance as done or cancelled. Only the accepter may close it.
func (s *AcceptanceService) Close(ctx context.Context, principal *domain.Principal, id string, reason domain.CloseReason) error {
	record, err := s.acceptances.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "acceptance", "acceptance_id", id)
	}
	if err := lifecycle.CanCloseAcceptance(record, principal); err != nil {
		return err
	}
	event := lifecycle.CloseEvent(reason)
	if _, err := lifecycle.Transition(lifecycle.StateAccepted, event); err != nil {
		return transitionError(lifecycle.StateAccepted, event)
	}
	if err := s.acceptances.Delete(ctx, id); err != nil {
		return notFoundOr(err, "acceptance", "acceptance_id", id)
	}

	s.metrics.RecordTransition(string(event))
	s.logger.Info("acceptance closed", zap.String("job_id", record.JobID), zap.String("reason", string(reason)))
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:       events.EventAcceptanceClosed,
		JobID:      record.JobID,
		ActorEmail: principal.Email,
		Payload:    events.AcceptanceClosedPayload{AcceptanceID: id, Reason: reason},
	})
	return nil
}

func (s *AcceptanceService) currentAcceptance(ctx context.Context, jobID string) (*domain.Acceptance, error) {
	existing, err := s.acceptances.GetByJobID(ctx, jobID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return existing, nil
}
