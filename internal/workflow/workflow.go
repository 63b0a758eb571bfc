// Package workflow orchestrates the job lifecycle on the client: it checks the lifecycle
// guards, calls the job service and keeps the local acceptance cache in step.
package workflow

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/jobstore"
	"github.com/spec-kit/job-board/internal/lifecycle"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// LatestJobsLimit is the number of postings shown on the home page.
const LatestJobsLimit = 6

// JobStore is the remote job service as seen by the workflow.
type JobStore interface {
	List(ctx context.Context, opts jobstore.ListOptions) ([]domain.Job, error)
	Get(ctx context.Context, id string) (*domain.Job, error)
	Create(ctx context.Context, draft domain.JobDraft) (*domain.Job, error)
	Update(ctx context.Context, id string, patch domain.JobPatch) (*domain.Job, error)
	Delete(ctx context.Context, id string) error
	Accept(ctx context.Context, jobID string) (*domain.Acceptance, error)
	ListAccepted(ctx context.Context, email string) ([]domain.Acceptance, error)
	RemoveAccepted(ctx context.Context, id string, reason domain.CloseReason) error
}

// AcceptanceCache is the device-local ledger of accepted jobs.
type AcceptanceCache interface {
	Add(ctx context.Context, record domain.Acceptance) error
	Remove(ctx context.Context, jobID string) error
	List(ctx context.Context) ([]domain.Acceptance, error)
	Replace(ctx context.Context, records []domain.Acceptance) error
}

// Identity supplies the current principal.
type Identity interface {
	Current() *domain.Principal
}

// DraftError is returned by Create so the caller can resubmit the draft it entered.
type DraftError struct {
	Draft domain.JobDraft
	Err   error
}

func (e *DraftError) Error() string { return e.Err.Error() }

func (e *DraftError) Unwrap() error { return e.Err }

// JobDetail is a posting together with what the current principal may do with it.
type JobDetail struct {
	Job          domain.Job
	Owned        bool
	AcceptedByMe bool
}

// Workflow runs the client side of the job lifecycle.
type Workflow struct {
	store    JobStore
	cache    AcceptanceCache
	identity Identity
	busy     *Busy
	logger   *zap.Logger
}

// New builds a workflow.
func New(store JobStore, cache AcceptanceCache, identity Identity, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{store: store, cache: cache, identity: identity, busy: NewBusy(), logger: logger}
}

// Busy exposes the per-action flags.
func (w *Workflow) Busy() *Busy {
	return w.busy
}

func (w *Workflow) principal(action string) (*domain.Principal, error) {
	p := w.identity.Current()
	if p == nil || p.Email == "" {
		return nil, apperrors.NewUnauthorized("please log in to " + action)
	}
	return p, nil
}

// Create posts a draft as the current principal. On failure the returned error is a
// *DraftError carrying the draft.
func (w *Workflow) Create(ctx context.Context, draft domain.JobDraft) (*domain.Job, error) {
	var job *domain.Job
	err := w.busy.Run(ActionCreate, func() error {
		principal, err := w.principal("post a job")
		if err != nil {
			return err
		}
		valid, err := lifecycle.ValidateDraft(draft)
		if err != nil {
			return err
		}
		if _, err := lifecycle.NewPosting(valid, principal, time.Now()); err != nil {
			return err
		}
		job, err = w.store.Create(ctx, valid)
		return err
	})
	if err != nil {
		return nil, &DraftError{Draft: draft, Err: err}
	}
	w.logger.Info("job posted", zap.String("job_id", job.ID))
	return job, nil
}

// List returns every posting, newest first unless sort says otherwise.
func (w *Workflow) List(ctx context.Context, sort domain.SortOrder) ([]domain.Job, error) {
	var jobs []domain.Job
	err := w.busy.Run(ActionList, func() error {
		var err error
		jobs, err = w.store.List(ctx, jobstore.ListOptions{Sort: domain.ParseSortOrder(string(sort))})
		return err
	})
	return jobs, err
}

// LatestJobs returns the newest postings for the home page.
func (w *Workflow) LatestJobs(ctx context.Context) ([]domain.Job, error) {
	var jobs []domain.Job
	err := w.busy.Run(ActionLatestJobs, func() error {
		var err error
		jobs, err = w.store.List(ctx, jobstore.ListOptions{Sort: domain.SortDesc, Limit: LatestJobsLimit})
		return err
	})
	return jobs, err
}

// View returns one posting. Anonymous callers may view.
func (w *Workflow) View(ctx context.Context, id string) (*JobDetail, error) {
	var detail *JobDetail
	err := w.busy.Run(ActionView, func() error {
		job, err := w.store.Get(ctx, id)
		if err != nil {
			return err
		}
		detail = &JobDetail{Job: *job}
		principal := w.identity.Current()
		if principal == nil {
			return nil
		}
		detail.Owned = job.OwnedBy(principal)
		if held, err := w.cachedByJob(ctx, job.ID); err == nil && held != nil {
			detail.AcceptedByMe = held.HeldBy(principal)
		}
		return nil
	})
	return detail, err
}

// Update edits a posting owned by the current principal.
func (w *Workflow) Update(ctx context.Context, id string, patch domain.JobPatch) (*domain.Job, error) {
	var updated *domain.Job
	err := w.busy.Run(ActionUpdate, func() error {
		principal, err := w.principal("update a job")
		if err != nil {
			return err
		}
		job, err := w.store.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := lifecycle.CanMutateJob(job, principal); err != nil {
			return err
		}
		if _, err := lifecycle.ApplyPatch(job, patch); err != nil {
			return err
		}
		updated, err = w.store.Update(ctx, id, patch)
		return err
	})
	return updated, err
}

// Delete removes a posting owned by the current principal.
func (w *Workflow) Delete(ctx context.Context, id string) error {
	return w.busy.Run(ActionDelete, func() error {
		principal, err := w.principal("delete a job")
		if err != nil {
			return err
		}
		job, err := w.store.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := lifecycle.CanMutateJob(job, principal); err != nil {
			return err
		}
		if err := w.store.Delete(ctx, id); err != nil {
			return err
		}
		w.dropCached(ctx, id)
		w.logger.Info("job deleted", zap.String("job_id", id))
		return nil
	})
}

// Accept claims a posting for the current principal. Duplicate and conflicting
// acceptances are decided by the service; the local cache is only written once the
// service has confirmed the acceptance.
func (w *Workflow) Accept(ctx context.Context, jobID string) (*domain.Acceptance, error) {
	var record *domain.Acceptance
	err := w.busy.Run(ActionAccept, func() error {
		principal, err := w.principal("accept a job")
		if err != nil {
			return err
		}
		job, err := w.store.Get(ctx, jobID)
		if err != nil {
			if apperrors.HasCode(err, apperrors.CodeNotFound) {
				w.dropCached(ctx, jobID)
			}
			return err
		}
		if err := lifecycle.CanAccept(job, principal, nil); err != nil {
			return err
		}
		record, err = w.store.Accept(ctx, jobID)
		if err != nil {
			return err
		}
		w.cacheAcceptance(ctx, *record)
		return nil
	})
	return record, err
}

// MarkDone closes the principal's acceptance of jobID as completed.
func (w *Workflow) MarkDone(ctx context.Context, jobID string) error {
	return w.close(ctx, jobID, domain.CloseDone)
}

// Cancel abandons the principal's acceptance of jobID, reopening the job.
func (w *Workflow) Cancel(ctx context.Context, jobID string) error {
	return w.close(ctx, jobID, domain.CloseCancel)
}

func (w *Workflow) close(ctx context.Context, jobID string, reason domain.CloseReason) error {
	return w.busy.Run(ActionClose, func() error {
		principal, err := w.principal("manage your tasks")
		if err != nil {
			return err
		}
		record, err := w.findAcceptance(ctx, principal, jobID)
		if err != nil {
			return err
		}
		if err := lifecycle.CanCloseAcceptance(record, principal); err != nil {
			return err
		}
		if _, err := lifecycle.Transition(lifecycle.StateAccepted, lifecycle.CloseEvent(reason)); err != nil {
			return err
		}
		if err := w.store.RemoveAccepted(ctx, record.ID, reason); err != nil {
			if apperrors.HasCode(err, apperrors.CodeNotFound) {
				w.dropCached(ctx, jobID)
			}
			return err
		}
		w.dropCached(ctx, jobID)
		return nil
	})
}

// MyPostedJobs lists the postings of the current principal.
func (w *Workflow) MyPostedJobs(ctx context.Context) ([]domain.Job, error) {
	var jobs []domain.Job
	err := w.busy.Run(ActionMyPosted, func() error {
		principal, err := w.principal("see your jobs")
		if err != nil {
			return err
		}
		jobs, err = w.store.List(ctx, jobstore.ListOptions{Sort: domain.SortDesc, PosterEmail: principal.Email})
		return err
	})
	return jobs, err
}

// MyAcceptedTasks fetches the acceptances of the current principal and replaces the
// local cache with them.
func (w *Workflow) MyAcceptedTasks(ctx context.Context) ([]domain.Acceptance, error) {
	var records []domain.Acceptance
	err := w.busy.Run(ActionMyAccepted, func() error {
		principal, err := w.principal("see your tasks")
		if err != nil {
			return err
		}
		records, err = w.store.ListAccepted(ctx, principal.Email)
		if err != nil {
			return err
		}
		if err := w.cache.Replace(ctx, records); err != nil {
			w.logger.Warn("refreshing accepted jobs cache failed", zap.Error(err))
		}
		return nil
	})
	return records, err
}

func (w *Workflow) cachedByJob(ctx context.Context, jobID string) (*domain.Acceptance, error) {
	records, err := w.cache.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].JobID == jobID {
			return &records[i], nil
		}
	}
	return nil, nil
}

// findAcceptance resolves the principal's acceptance of jobID from the service and
// resyncs the cache with what it returns.
func (w *Workflow) findAcceptance(ctx context.Context, principal *domain.Principal, jobID string) (*domain.Acceptance, error) {
	records, err := w.store.ListAccepted(ctx, principal.Email)
	if err != nil {
		return nil, err
	}
	if err := w.cache.Replace(ctx, records); err != nil {
		w.logger.Warn("refreshing accepted jobs cache failed", zap.Error(err))
	}
	for i := range records {
		if records[i].JobID == jobID {
			return &records[i], nil
		}
	}
	return nil, apperrors.NewNotFound("accepted job", map[string]any{"job_id": jobID})
}

// cacheAcceptance stores a confirmed acceptance, replacing any stale row for the job.
func (w *Workflow) cacheAcceptance(ctx context.Context, record domain.Acceptance) {
	err := w.cache.Add(ctx, record)
	if apperrors.HasCode(err, apperrors.CodeDuplicateAcceptance) {
		w.dropCached(ctx, record.JobID)
		err = w.cache.Add(ctx, record)
	}
	if err != nil {
		w.logger.Warn("caching accepted job failed", zap.String("job_id", record.JobID), zap.Error(err))
	}
}

func (w *Workflow) dropCached(ctx context.Context, jobID string) {
	if err := w.cache.Remove(ctx, jobID); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Warn("removing cached acceptance failed", zap.String("job_id", jobID), zap.Error(err))
	}
}
