package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/config"
	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/events"
	"github.com/spec-kit/job-board/internal/repository"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

var (
	alice = &domain.Principal{Email: "alice@example.com", DisplayName: "Alice"}
	bob   = &domain.Principal{Email: "bob@example.com", DisplayName: "Bob"}
	carol = &domain.Principal{Email: "carol@example.com"}
)

type recordingMetrics struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingMetrics) RecordTransition(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

type fixture struct {
	store       *repository.MemoryStore
	jobs        *JobService
	acceptances *AcceptanceService
	metrics     *recordingMetrics
	published   []events.EventType
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: repository.NewMemoryStore(), metrics: &recordingMetrics{}}
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			f.published = append(f.published, e.Type)
			return nil
		})
	}
	f.jobs = NewJobService(JobDependencies{
		JobRepo:        f.store.Jobs(),
		AcceptanceRepo: f.store.Acceptances(),
		Dispatcher:     dispatcher,
		Metrics:        f.metrics,
	})
	f.acceptances = NewAcceptanceService(AcceptanceDependencies{
		JobRepo:        f.store.Jobs(),
		AcceptanceRepo: f.store.Acceptances(),
		Dispatcher:     dispatcher,
		Metrics:        f.metrics,
	})
	return f
}

func logoDraft() domain.JobDraft {
	return domain.JobDraft{Title: "Logo design", Category: domain.CategoryGraphicsDesign, Summary: "A new logo"}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, code), "expected %s, got %v", code, err)
}

func TestJobServiceCreateAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	job, err := f.jobs.Create(ctx, alice, logoDraft())
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "Alice", job.PostedByName)
	assert.Equal(t, alice.Email, job.PosterEmail)

	_, err = f.jobs.Create(ctx, nil, logoDraft())
	assertCode(t, err, apperrors.CodeUnauthorized)

	_, err = f.jobs.Create(ctx, alice, domain.JobDraft{Category: domain.CategorySEO})
	assertCode(t, err, apperrors.CodeValidation)

	second, err := f.jobs.Create(ctx, bob, domain.JobDraft{Title: "SEO audit", Category: domain.CategorySEO, Summary: "audit"})
	require.NoError(t, err)

	all, err := f.jobs.List(ctx, domain.JobFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	mine, err := f.jobs.List(ctx, domain.JobFilter{PosterEmail: alice.Email})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, job.ID, mine[0].ID)

	_, err = f.jobs.List(ctx, domain.JobFilter{Limit: -1})
	assertCode(t, err, apperrors.CodeValidation)

	assert.Equal(t, []events.EventType{events.EventJobCreated, events.EventJobCreated}, f.published)
}

func TestJobServiceUpdateOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job, err := f.jobs.Create(ctx, alice, logoDraft())
	require.NoError(t, err)

	title := "Logo redesign"
	_, err = f.jobs.Update(ctx, bob, job.ID, domain.JobPatch{Title: &title})
	assertCode(t, err, apperrors.CodeForbidden)
	untouched, err := f.jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.Title, untouched.Title)

	updated, err := f.jobs.Update(ctx, alice, job.ID, domain.JobPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, job.PosterEmail, updated.PosterEmail)
	assert.Equal(t, job.CreatedAt, updated.CreatedAt)

	stored, err := f.jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, title, stored.Title)

	_, err = f.jobs.Update(ctx, alice, "missing", domain.JobPatch{Title: &title})
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestJobServiceDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job, err := f.jobs.Create(ctx, alice, logoDraft())
	require.NoError(t, err)
	_, err = f.acceptances.Accept(ctx, bob, job.ID)
	require.NoError(t, err)

	assertCode(t, f.jobs.Delete(ctx, bob, job.ID), apperrors.CodeForbidden)
	require.NoError(t, f.jobs.Delete(ctx, alice, job.ID))

	_, err = f.jobs.Get(ctx, job.ID)
	assertCode(t, err, apperrors.CodeNotFound)

	held, err := f.acceptances.ListForPrincipal(ctx, bob, "")
	require.NoError(t, err)
	assert.Empty(t, held)
	assert.Contains(t, f.metrics.events, "delete")
}

type brokenJobDelete struct {
	repository.JobRepository
}

func (brokenJobDelete) Delete(context.Context, string) error {
	return errors.New("connection reset")
}

func TestJobServiceDeleteFailureKeepsAcceptance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job, err := f.jobs.Create(ctx, alice, logoDraft())
	require.NoError(t, err)
	_, err = f.acceptances.Accept(ctx, bob, job.ID)
	require.NoError(t, err)

	jobs := NewJobService(JobDependencies{
		JobRepo:        brokenJobDelete{JobRepository: f.store.Jobs()},
		AcceptanceRepo: f.store.Acceptances(),
		Metrics:        f.metrics,
	})
	assertCode(t, jobs.Delete(ctx, alice, job.ID), apperrors.CodeInternal)

	stored, err := f.jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, stored.ID)
	held, err := f.acceptances.ListForPrincipal(ctx, bob, "")
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, job.ID, held[0].JobID)
}

func TestAcceptanceServiceGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job, err := f.jobs.Create(ctx, alice, logoDraft())
	require.NoError(t, err)

	_, err = f.acceptances.Accept(ctx, alice, job.ID)
	assertCode(t, err, apperrors.CodeForbidden)

	_, err = f.acceptances.Accept(ctx, nil, job.ID)
	assertCode(t, err, apperrors.CodeUnauthorized)

	_, err = f.acceptances.Accept(ctx, bob, "missing")
	assertCode(t, err, apperrors.CodeNotFound)

	record, err := f.acceptances.Accept(ctx, bob, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.Title, record.Title)
	assert.Equal(t, bob.Email, record.AcceptedByEmail)
	assert.Equal(t, "Bob", record.AcceptedByName)

	_, err = f.acceptances.Accept(ctx, bob, job.ID)
	assertCode(t, err, apperrors.CodeDuplicateAcceptance)

	_, err = f.acceptances.Accept(ctx, carol, job.ID)
	assertCode(t, err, apperrors.CodeConflict)
}

func TestAcceptanceServiceConcurrentAccept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job, err := f.jobs.Create(ctx, alice, logoDraft())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, p := range []*domain.Principal{bob, carol} {
		wg.Add(1)
		go func(i int, p *domain.Principal) {
			defer wg.Done()
			_, results[i] = f.acceptances.Accept(ctx, p, job.ID)
		}(i, p)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict), "unexpected error %v", err)
	}
	assert.Equal(t, 1, successes)
}

func TestAcceptanceServiceListAndClose(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job, err := f.jobs.Create(ctx, alice, logoDraft())
	require.NoError(t, err)
	record, err := f.acceptances.Accept(ctx, bob, job.ID)
	require.NoError(t, err)

	_, err = f.acceptances.ListForPrincipal(ctx, bob, alice.Email)
	assertCode(t, err, apperrors.CodeForbidden)

	held, err := f.acceptances.ListForPrincipal(ctx, bob, "BOB@example.com")
	require.NoError(t, err)
	require.Len(t, held, 1)

	assertCode(t, f.acceptances.Close(ctx, carol, record.ID, domain.CloseDone), apperrors.CodeForbidden)
	require.NoError(t, f.acceptances.Close(ctx, bob, record.ID, domain.CloseCancel))
	assertCode(t, f.acceptances.Close(ctx, bob, record.ID, domain.CloseDone), apperrors.CodeNotFound)

	held, err = f.acceptances.ListForPrincipal(ctx, bob, "")
	require.NoError(t, err)
	assert.Empty(t, held)

	// the job is Open again and can be accepted by someone else
	_, err = f.acceptances.Accept(ctx, carol, job.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"create", "accept", "cancel", "accept"}, f.metrics.events)
}

func TestAcceptanceServiceCloseLeavesOtherTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, err := f.jobs.Create(ctx, alice, logoDraft())
	require.NoError(t, err)
	draft := logoDraft()
	draft.Title = "Landing page copy"
	second, err := f.jobs.Create(ctx, alice, draft)
	require.NoError(t, err)

	done, err := f.acceptances.Accept(ctx, bob, first.ID)
	require.NoError(t, err)
	kept, err := f.acceptances.Accept(ctx, bob, second.ID)
	require.NoError(t, err)

	require.NoError(t, f.acceptances.Close(ctx, bob, done.ID, domain.CloseDone))

	held, err := f.acceptances.ListForPrincipal(ctx, bob, "")
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, kept.ID, held[0].ID)
	assert.Equal(t, second.ID, held[0].JobID)

	_, err = f.acceptances.Accept(ctx, carol, second.ID)
	assertCode(t, err, apperrors.CodeConflict)
}

type stubExchanger struct {
	identity *auth.FederatedIdentity
	err      error
}

func (s stubExchanger) Exchange(context.Context, string) (*auth.FederatedIdentity, error) {
	return s.identity, s.err
}

func newAuthService(store *repository.MemoryStore, google auth.FederatedExchanger) *AuthService {
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, BcryptCost: 4}}
	return NewAuthService(cfg, AuthDependencies{
		AccountRepo: store.Accounts(),
		ProfileRepo: store.Profiles(),
		Google:      google,
	})
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newAuthService(store, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "weak"})
	assertCode(t, err, apperrors.CodeValidation)

	_, err = svc.Register(ctx, RegisterInput{Email: "not-an-email", Password: "Secret1"})
	assertCode(t, err, apperrors.CodeValidation)

	result, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "Secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	profile, err := store.Profiles().GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", profile.Name)

	_, err = svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "Secret1"})
	assertCode(t, err, apperrors.CodeConflict)

	_, err = svc.Login(ctx, "alice@example.com", "wrong")
	assertCode(t, err, apperrors.CodeAuthFailed)
	_, err = svc.Login(ctx, "nobody@example.com", "Secret1")
	assertCode(t, err, apperrors.CodeAuthFailed)

	login, err := svc.Login(ctx, "alice@example.com", "Secret1")
	require.NoError(t, err)
	claims, err := svc.TokenManager().ParseToken(login.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))
	revoked, err := svc.Revocations().IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	me, err := svc.Me(ctx, claims.Principal())
	require.NoError(t, err)
	assert.Equal(t, "Alice", me.Name)
}

func TestAuthServiceFederated(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()

	_, err := newAuthService(store, nil).LoginFederated(ctx, domain.AuthProviderGoogle, "code")
	assertCode(t, err, apperrors.CodeAuthFailed)

	failing := newAuthService(store, stubExchanger{err: errors.New("denied")})
	_, err = failing.LoginFederated(ctx, domain.AuthProviderGoogle, "code")
	assertCode(t, err, apperrors.CodeAuthFailed)

	svc := newAuthService(store, stubExchanger{identity: &auth.FederatedIdentity{
		Provider: domain.AuthProviderGoogle,
		Email:    "bob@example.com",
		Name:     "Bob",
		PhotoURL: "http://img/bob.png",
	}})
	first, err := svc.LoginFederated(ctx, "", "code")
	require.NoError(t, err)
	second, err := svc.LoginFederated(ctx, domain.AuthProviderGoogle, "code")
	require.NoError(t, err)
	assert.Equal(t, first.Account.ID, second.Account.ID)
	assert.Equal(t, domain.AuthProviderGoogle, second.Account.Provider)

	// federated accounts cannot sign in with a password
	_, err = svc.Login(ctx, "bob@example.com", "")
	assertCode(t, err, apperrors.CodeAuthFailed)
}

func TestProfileService(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewProfileService(store.Profiles())
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.Profile{Name: "No Email"})
	assertCode(t, err, apperrors.CodeValidation)

	saved, err := svc.Register(ctx, domain.Profile{Name: " Alice ", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", saved.Name)
	assert.False(t, saved.CreatedAt.IsZero())

	_, err = svc.Get(ctx, "missing@example.com")
	assertCode(t, err, apperrors.CodeNotFound)
}
