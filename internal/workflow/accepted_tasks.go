package workflow

import (
	"context"
	"sync"

	"github.com/spec-kit/job-board/internal/domain"
)

// AcceptedTasks is the "my accepted tasks" view model. Closing a task removes its row
// immediately and puts it back if the service rejects the change.
type AcceptedTasks struct {
	mu   sync.Mutex
	wf   *Workflow
	rows []domain.Acceptance
}

// NewAcceptedTasks binds a view model to wf.
func NewAcceptedTasks(wf *Workflow) *AcceptedTasks {
	return &AcceptedTasks{wf: wf}
}

// Refresh reloads the rows from the service.
func (v *AcceptedTasks) Refresh(ctx context.Context) error {
	records, err := v.wf.MyAcceptedTasks(ctx)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.rows = records
	v.mu.Unlock()
	return nil
}

// Rows returns a copy of the visible rows.
func (v *AcceptedTasks) Rows() []domain.Acceptance {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]domain.Acceptance(nil), v.rows...)
}

// Done marks the task for jobID done. The notice describes the outcome either way.
func (v *AcceptedTasks) Done(ctx context.Context, jobID string) (Notice, error) {
	return v.resolve(ctx, jobID, domain.CloseDone)
}

// Cancel gives the task for jobID up.
func (v *AcceptedTasks) Cancel(ctx context.Context, jobID string) (Notice, error) {
	return v.resolve(ctx, jobID, domain.CloseCancel)
}

func (v *AcceptedTasks) resolve(ctx context.Context, jobID string, reason domain.CloseReason) (Notice, error) {
	index, row, ok := v.take(jobID)

	var err error
	if reason == domain.CloseCancel {
		err = v.wf.Cancel(ctx, jobID)
	} else {
		err = v.wf.MarkDone(ctx, jobID)
	}
	if err != nil {
		if ok {
			v.restore(index, row)
		}
		return NoticeFor(err), err
	}
	return ClosedNotice(reason), nil
}

func (v *AcceptedTasks) take(jobID string) (int, domain.Acceptance, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, row := range v.rows {
		if row.JobID == jobID {
			v.rows = append(v.rows[:i:i], v.rows[i+1:]...)
			return i, row, true
		}
	}
	return 0, domain.Acceptance{}, false
}

func (v *AcceptedTasks) restore(index int, row domain.Acceptance) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if index > len(v.rows) {
		index = len(v.rows)
	}
	rows := make([]domain.Acceptance, 0, len(v.rows)+1)
	rows = append(rows, v.rows[:index]...)
	rows = append(rows, row)
	v.rows = append(rows, v.rows[index:]...)
}
