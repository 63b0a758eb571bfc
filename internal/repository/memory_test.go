package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/job-board/internal/domain"
)

func newJob(title, poster string) *domain.Job {
	return &domain.Job{
		Title:        title,
		Category:     domain.CategorySEO,
		Summary:      "summary",
		PostedByName: poster,
		PosterEmail:  poster,
	}
}

func TestMemoryJobsListOrdering(t *testing.T) {
	store := NewMemoryStore()
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }
	jobs := store.Jobs()
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		require.NoError(t, jobs.Create(ctx, newJob(title, "a@example.com")))
	}
	require.NoError(t, jobs.Create(ctx, newJob("other", "b@example.com")))

	desc, err := jobs.List(ctx, domain.JobFilter{})
	require.NoError(t, err)
	require.Len(t, desc, 4)
	assert.Equal(t, "other", desc[0].Title)
	assert.Equal(t, "first", desc[3].Title)

	asc, err := jobs.List(ctx, domain.JobFilter{Sort: domain.SortAsc, Limit: 2})
	require.NoError(t, err)
	require.Len(t, asc, 2)
	assert.Equal(t, "first", asc[0].Title)
	assert.Equal(t, "second", asc[1].Title)

	mine, err := jobs.List(ctx, domain.JobFilter{PosterEmail: "A@Example.com"})
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}

func TestMemoryJobsMissing(t *testing.T) {
	jobs := NewMemoryStore().Jobs()
	ctx := context.Background()

	_, err := jobs.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.ErrorIs(t, jobs.Delete(ctx, "missing"), pgx.ErrNoRows)
	assert.ErrorIs(t, jobs.Update(ctx, &domain.Job{ID: "missing"}), pgx.ErrNoRows)
}

func TestMemoryDeleteCascadesAcceptance(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	job := newJob("logo", "a@example.com")
	require.NoError(t, store.Jobs().Create(ctx, job))

	record := &domain.Acceptance{JobID: job.ID, AcceptedByEmail: "b@example.com"}
	require.NoError(t, store.Acceptances().Create(ctx, record))

	require.NoError(t, store.Jobs().Delete(ctx, job.ID))
	_, err := store.Acceptances().GetByID(ctx, record.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestMemoryAcceptanceSingleWinner(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	job := newJob("logo", "a@example.com")
	require.NoError(t, store.Jobs().Create(ctx, job))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		rejected int
	)
	for _, email := range []string{"b@example.com", "c@example.com", "d@example.com", "e@example.com"} {
		wg.Add(1)
		go func(email string) {
			defer wg.Done()
			err := store.Acceptances().Create(ctx, &domain.Acceptance{JobID: job.ID, AcceptedByEmail: email})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if err == ErrJobAlreadyAccepted {
				rejected++
			}
		}(email)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, 3, rejected)
}

func TestMemoryAcceptanceListByEmail(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	for _, title := range []string{"one", "two"} {
		job := newJob(title, "a@example.com")
		require.NoError(t, store.Jobs().Create(ctx, job))
		require.NoError(t, store.Acceptances().Create(ctx, &domain.Acceptance{JobID: job.ID, Title: title, AcceptedByEmail: "b@example.com"}))
	}

	records, err := store.Acceptances().ListByEmail(ctx, "B@example.com")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "two", records[0].Title)

	none, err := store.Acceptances().ListByEmail(ctx, "c@example.com")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMemoryAccountsAndProfiles(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	account := &domain.Account{Email: "a@example.com", Name: "A"}
	require.NoError(t, store.Accounts().Create(ctx, account))
	assert.ErrorIs(t, store.Accounts().Create(ctx, &domain.Account{Email: "A@EXAMPLE.COM"}), ErrEmailTaken)

	found, err := store.Accounts().GetByEmail(ctx, "A@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, found.ID)

	profile := &domain.Profile{Email: "a@example.com", Name: "A"}
	require.NoError(t, store.Profiles().Upsert(ctx, profile))
	created := profile.CreatedAt
	require.False(t, created.IsZero())

	require.NoError(t, store.Profiles().Upsert(ctx, &domain.Profile{Email: "A@example.com", Name: "Alice"}))
	got, err := store.Profiles().GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, created, got.CreatedAt)
}
