package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/events"
	"github.com/spec-kit/job-board/internal/lifecycle"
	"github.com/spec-kit/job-board/internal/repository"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// JobService coordinates job posting workflows.
type JobService struct {
	jobs        repository.JobRepository
	acceptances repository.AcceptanceRepository
	dispatcher  events.Dispatcher
	metrics     TransitionRecorder
	logger      *zap.Logger
	now         func() time.Time
}

// JobDependencies bundles collaborators for the job service.
type JobDependencies struct {
	JobRepo        repository.JobRepository
	AcceptanceRepo repository.AcceptanceRepository
	Dispatcher     events.Dispatcher
	Metrics        TransitionRecorder
	Logger         *zap.Logger
}

// NewJobService constructs the service.
func NewJobService(deps JobDependencies) *JobService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobService{
		jobs:        deps.JobRepo,
		acceptances: deps.AcceptanceRepo,
		dispatcher:  deps.Dispatcher,
		metrics:     recorderOrNop(deps.Metrics),
		logger:      logger,
		now:         time.Now,
	}
}

// Create publishes a new Open posting owned by the principal.
func (s *JobService) Create(ctx context.Context, principal *domain.Principal, draft domain.JobDraft) (*domain.Job, error) {
	job, err := lifecycle.NewPosting(draft, principal, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.metrics.RecordTransition(string(lifecycle.EventCreate))
	s.logger.Info("job created", zap.String("job_id", job.ID), zap.String("poster", job.PosterEmail))
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:       events.EventJobCreated,
		JobID:      job.ID,
		ActorEmail: principal.Email,
		Payload:    jobPayload(job),
	})
	return job, nil
}

// Get returns a single posting.
func (s *JobService) Get(ctx context.Context, id string) (*domain.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "job", "job_id", id)
	}
	return job, nil
}

// List returns postings ordered by creation time, newest first unless asked otherwise.
func (s *JobService) List(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error) {
	if filter.Limit < 0 {
		return nil, apperrors.NewValidationError("limit must not be negative", map[string]any{"limit": filter.Limit})
	}
	if filter.Sort == "" {
		filter.Sort = domain.SortDesc
	}
	jobs, err := s.jobs.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return jobs, nil
}

// Update applies an owner's edit. Identity and ownership fields never change.
func (s *JobService) Update(ctx context.Context, principal *domain.Principal, id string, patch domain.JobPatch) (*domain.Job, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanMutateJob(job, principal); err != nil {
		return nil, err
	}
	updated, err := lifecycle.ApplyPatch(job, patch)
	if err != nil {
		return nil, err
	}
	if err := s.jobs.Update(ctx, updated); err != nil {
		return nil, notFoundOr(err, "job", "job_id", id)
	}

	s.metrics.RecordTransition(string(lifecycle.EventUpdate))
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:       events.EventJobUpdated,
		JobID:      updated.ID,
		ActorEmail: principal.Email,
		Payload:    jobPayload(updated),
	})
	return updated, nil
}

// Delete removes an owner's posting together with any active acceptance.
func (s *JobService) Delete(ctx context.Context, principal *domain.Principal, id string) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := lifecycle.CanMutateJob(job, principal); err != nil {
		return err
	}

	existing, err := s.acceptances.GetByJobID(ctx, id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}
	state := lifecycle.StateOf(job, existing)
	if _, err := lifecycle.Transition(state, lifecycle.EventDelete); err != nil {
		return transitionError(state, lifecycle.EventDelete)
	}

	// The store removes the acceptance together with the job.
	if err := s.jobs.Delete(ctx, id); err != nil {
		return notFoundOr(err, "job", "job_id", id)
	}

	s.metrics.RecordTransition(string(lifecycle.EventDelete))
	s.logger.Info("job deleted", zap.String("job_id", id), zap.Bool("had_acceptance", existing != nil))
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:       events.EventJobDeleted,
		JobID:      id,
		ActorEmail: principal.Email,
		Payload:    events.JobDeletedPayload{HadAcceptance: existing != nil},
	})
	return nil
}

func jobPayload(job *domain.Job) events.JobPayload {
	return events.JobPayload{Title: job.Title, Category: job.Category, PosterEmail: job.PosterEmail}
}
