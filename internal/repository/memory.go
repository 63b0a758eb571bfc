package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/job-board/internal/domain"
)

// MemoryStore backs every repository when no Postgres DSN is configured. Jobs and
// acceptances share one lock so the one-acceptance-per-job rule and the delete cascade
// stay atomic.
type MemoryStore struct {
	mu          sync.RWMutex
	jobs        map[string]domain.Job
	acceptances map[string]domain.Acceptance
	accounts    map[string]domain.Account
	profiles    map[string]domain.Profile
	lastCreated time.Time
	now         func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:        make(map[string]domain.Job),
		acceptances: make(map[string]domain.Acceptance),
		accounts:    make(map[string]domain.Account),
		profiles:    make(map[string]domain.Profile),
		now:         time.Now,
	}
}

// stamp returns a strictly increasing timestamp. Callers hold mu.
func (s *MemoryStore) stamp() time.Time {
	now := s.now().UTC()
	if !now.After(s.lastCreated) {
		now = s.lastCreated.Add(time.Microsecond)
	}
	s.lastCreated = now
	return now
}

// Jobs exposes the store as a JobRepository.
func (s *MemoryStore) Jobs() JobRepository { return memoryJobs{s} }

// Acceptances exposes the store as an AcceptanceRepository.
func (s *MemoryStore) Acceptances() AcceptanceRepository { return memoryAcceptances{s} }

// Accounts exposes the store as an AccountRepository.
func (s *MemoryStore) Accounts() AccountRepository { return memoryAccounts{s} }

// Profiles exposes the store as a ProfileRepository.
func (s *MemoryStore) Profiles() ProfileRepository { return memoryProfiles{s} }

type memoryJobs struct{ s *MemoryStore }

func (r memoryJobs) Create(_ context.Context, job *domain.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	job.ID = uuid.NewString()
	job.CreatedAt = r.s.stamp()
	r.s.jobs[job.ID] = *job
	return nil
}

func (r memoryJobs) Update(_ context.Context, job *domain.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.jobs[job.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	current.Title = job.Title
	current.Category = job.Category
	current.Summary = job.Summary
	current.CoverImageURL = job.CoverImageURL
	r.s.jobs[job.ID] = current
	return nil
}

func (r memoryJobs) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.jobs[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.jobs, id)
	for key, record := range r.s.acceptances {
		if record.JobID == id {
			delete(r.s.acceptances, key)
		}
	}
	return nil
}

func (r memoryJobs) GetByID(_ context.Context, id string) (*domain.Job, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	job, ok := r.s.jobs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &job, nil
}

func (r memoryJobs) List(_ context.Context, filter domain.JobFilter) ([]domain.Job, error) {
	r.s.mu.RLock()
	result := make([]domain.Job, 0, len(r.s.jobs))
	for _, job := range r.s.jobs {
		if filter.PosterEmail != "" && !domain.SameEmail(job.PosterEmail, filter.PosterEmail) {
			continue
		}
		result = append(result, job)
	}
	r.s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if filter.Sort == domain.SortAsc {
			a, b = b, a
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	if limit := normalizeLimit(filter.Limit); len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

type memoryAcceptances struct{ s *MemoryStore }

func (r memoryAcceptances) Create(_ context.Context, record *domain.Acceptance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.acceptances {
		if existing.JobID == record.JobID {
			return ErrJobAlreadyAccepted
		}
	}
	record.ID = uuid.NewString()
	record.AcceptedAt = r.s.stamp()
	r.s.acceptances[record.ID] = *record
	return nil
}

func (r memoryAcceptances) GetByID(_ context.Context, id string) (*domain.Acceptance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	record, ok := r.s.acceptances[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &record, nil
}

func (r memoryAcceptances) GetByJobID(_ context.Context, jobID string) (*domain.Acceptance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, record := range r.s.acceptances {
		if record.JobID == jobID {
			return &record, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memoryAcceptances) ListByEmail(_ context.Context, email string) ([]domain.Acceptance, error) {
	r.s.mu.RLock()
	result := []domain.Acceptance{}
	for _, record := range r.s.acceptances {
		if domain.SameEmail(record.AcceptedByEmail, email) {
			result = append(result, record)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].AcceptedAt.After(result[j].AcceptedAt)
	})
	return result, nil
}

func (r memoryAcceptances) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.acceptances[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.acceptances, id)
	return nil
}

type memoryAccounts struct{ s *MemoryStore }

func (r memoryAccounts) Create(_ context.Context, account *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.accounts {
		if domain.SameEmail(existing.Email, account.Email) {
			return ErrEmailTaken
		}
	}
	now := r.s.now().UTC()
	account.ID = uuid.NewString()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.s.accounts[account.ID] = *account
	return nil
}

func (r memoryAccounts) Update(_ context.Context, account *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[account.ID]; !ok {
		return pgx.ErrNoRows
	}
	account.UpdatedAt = r.s.now().UTC()
	r.s.accounts[account.ID] = *account
	return nil
}

func (r memoryAccounts) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	account, ok := r.s.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &account, nil
}

func (r memoryAccounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, account := range r.s.accounts {
		if domain.SameEmail(account.Email, email) {
			return &account, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memoryProfiles struct{ s *MemoryStore }

func (r memoryProfiles) Upsert(_ context.Context, profile *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := strings.ToLower(strings.TrimSpace(profile.Email))
	if existing, ok := r.s.profiles[key]; ok {
		profile.CreatedAt = existing.CreatedAt
	} else if profile.CreatedAt.IsZero() {
		profile.CreatedAt = r.s.now().UTC()
	}
	r.s.profiles[key] = *profile
	return nil
}

func (r memoryProfiles) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	profile, ok := r.s.profiles[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &profile, nil
}
