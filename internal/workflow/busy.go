package workflow

import (
	"sync"

	"golang.org/x/sync/semaphore"

	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// Action names a user-triggered operation guarded by its own busy flag.
type Action string

const (
	ActionCreate     Action = "create"
	ActionList       Action = "list"
	ActionView       Action = "view"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionAccept     Action = "accept"
	ActionClose      Action = "close"
	ActionMyPosted   Action = "my posted jobs"
	ActionMyAccepted Action = "my accepted tasks"
	ActionLatestJobs Action = "latest jobs"
)

// Busy holds one non-blocking flag per action. A second submit of the same action while
// the first is pending is rejected with BUSY.
type Busy struct {
	mu    sync.Mutex
	flags map[Action]*semaphore.Weighted
}

// NewBusy returns an idle set of flags.
func NewBusy() *Busy {
	return &Busy{flags: make(map[Action]*semaphore.Weighted)}
}

func (b *Busy) flag(action Action) *semaphore.Weighted {
	b.mu.Lock()
	defer b.mu.Unlock()
	sem, ok := b.flags[action]
	if !ok {
		sem = semaphore.NewWeighted(1)
		b.flags[action] = sem
	}
	return sem
}

// Run executes fn while holding the action's flag.
func (b *Busy) Run(action Action, fn func() error) error {
	sem := b.flag(action)
	if !sem.TryAcquire(1) {
		return apperrors.NewBusy(string(action))
	}
	defer sem.Release(1)
	return fn()
}

// Pending reports whether the action is currently running.
func (b *Busy) Pending(action Action) bool {
	sem := b.flag(action)
	if !sem.TryAcquire(1) {
		return true
	}
	sem.Release(1)
	return false
}
