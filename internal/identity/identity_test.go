package identity_test

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httptransport "github.com/spec-kit/job-board/internal/api/http"
	"github.com/spec-kit/job-board/internal/config"
	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/identity"
	"github.com/spec-kit/job-board/internal/jobstore"
	"github.com/spec-kit/job-board/internal/repository"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

type fixture struct {
	provider    *identity.Provider
	sessions    *identity.SessionStore
	store       *repository.MemoryStore
	sessionPath string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	app := httptransport.NewApp(httptransport.AppDependencies{
		Config: config.Config{
			Auth:      config.AuthConfig{JWTSecret: "identity", AccessTokenTTLMinutes: 5, BcryptCost: 4},
			RateLimit: config.RateLimitConfig{RequestsPerMinute: 6000, Burst: 100},
		},
		Jobs:        store.Jobs(),
		Acceptances: store.Acceptances(),
		Accounts:    store.Accounts(),
		Profiles:    store.Profiles(),
	})
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "session.json")
	sessions, err := identity.OpenSessionStore(path)
	require.NoError(t, err)
	client, err := jobstore.NewClient(srv.URL, jobstore.WithTokenSource(sessions))
	require.NoError(t, err)

	return &fixture{
		provider:    identity.NewProvider(client, sessions, nil),
		sessions:    sessions,
		store:       store,
		sessionPath: path,
	}
}

func TestRegisterSignsInAndRecordsProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	principal, err := f.provider.Register(ctx, " b@example.com ", "Secret1", domain.Profile{Name: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", principal.Email)
	assert.Equal(t, "Bob", principal.DisplayName)
	require.NotNil(t, f.provider.Current())
	assert.NotEmpty(t, f.sessions.Token())

	profile, err := f.store.Profiles().GetByEmail(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Bob", profile.Name)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	f := newFixture(t)
	_, err := f.provider.Register(context.Background(), "b@example.com", "secret", domain.Profile{Name: "Bob"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAuthFailed))
	assert.Contains(t, err.Error(), "upper-case")
	assert.Nil(t, f.provider.Current())
}

func TestSignInFailuresAreAuthFailed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.provider.Register(ctx, "b@example.com", "Secret1", domain.Profile{Name: "Bob"})
	require.NoError(t, err)
	require.NoError(t, f.provider.SignOut(ctx))

	_, err = f.provider.SignIn(ctx, "b@example.com", "Wrong1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAuthFailed))
	assert.Nil(t, f.provider.Current())

	_, err = f.provider.SignInWithFederatedProvider(ctx, "code")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAuthFailed))

	principal, err := f.provider.SignIn(ctx, "b@example.com", "Secret1")
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", principal.Email)
}

func TestSessionPersistsAcrossStores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.provider.Register(ctx, "b@example.com", "Secret1", domain.Profile{Name: "Bob"})
	require.NoError(t, err)

	reopened, err := identity.OpenSessionStore(f.sessionPath)
	require.NoError(t, err)
	require.NotNil(t, reopened.Principal())
	assert.Equal(t, "Bob", reopened.Principal().DisplayName)
	assert.Equal(t, f.sessions.Token(), reopened.Token())
}

func TestSignOutClearsLocalSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.provider.Register(ctx, "b@example.com", "Secret1", domain.Profile{Name: "Bob"})
	require.NoError(t, err)

	require.NoError(t, f.provider.SignOut(ctx))
	assert.Nil(t, f.provider.Current())
	assert.Empty(t, f.sessions.Token())
	_, err = os.Stat(f.sessionPath)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, f.provider.SignOut(ctx))
}

func TestInMemorySessionStore(t *testing.T) {
	sessions, err := identity.OpenSessionStore("")
	require.NoError(t, err)
	require.NoError(t, sessions.Set(&jobstore.Session{Token: "t", Principal: domain.Principal{Email: "a@example.com"}}))
	assert.Equal(t, "t", sessions.Token())
	require.NoError(t, sessions.Clear())
	assert.Nil(t, sessions.Principal())
}
