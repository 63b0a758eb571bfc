package cli

import (
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/job-board/internal/acceptcache"
	"github.com/spec-kit/job-board/internal/config"
	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/identity"
	"github.com/spec-kit/job-board/internal/jobstore"
	"github.com/spec-kit/job-board/internal/workflow"
)

const redisCachePrefix = "jobboard:client:"

// Identity is the sign-in surface used by the auth commands.
type Identity interface {
	Current() *domain.Principal
	SignIn(ctx context.Context, email, password string) (*domain.Principal, error)
	SignInWithFederatedProvider(ctx context.Context, code string) (*domain.Principal, error)
	Register(ctx context.Context, email, password string, profile domain.Profile) (*domain.Principal, error)
	SignOut(ctx context.Context) error
}

// Env is the client core the commands dispatch to.
type Env struct {
	Workflow *workflow.Workflow
	Identity Identity
	closers  []func() error
}

// NewEnv wires the job store client, session, acceptance cache and workflow from cfg.
func NewEnv(cfg *config.ClientConfig, logger *zap.Logger) (*Env, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sessions, err := identity.OpenSessionStore(cfg.SessionPath)
	if err != nil {
		return nil, err
	}
	client, err := jobstore.NewClient(cfg.BaseURL,
		jobstore.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		jobstore.WithTokenSource(sessions),
		jobstore.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	env := &Env{}
	var storage acceptcache.Storage
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		env.closers = append(env.closers, rdb.Close)
		storage = acceptcache.NewRedisStorage(rdb, redisCachePrefix)
	default:
		storage = acceptcache.NewFileStorage(cfg.CachePath)
	}

	provider := identity.NewProvider(client, sessions, logger)
	env.Identity = provider
	env.Workflow = workflow.New(client, acceptcache.New(storage, logger), provider, logger)
	return env, nil
}

// Close releases backing connections.
func (e *Env) Close() error {
	var first error
	for _, closeFn := range e.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
