package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spec-kit/job-board/internal/api/http/handlers"
	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/config"
	"github.com/spec-kit/job-board/internal/events"
	"github.com/spec-kit/job-board/internal/observability"
	"github.com/spec-kit/job-board/internal/repository"
	"github.com/spec-kit/job-board/internal/service"
)

// AppDependencies carries everything NewApp wires together.
type AppDependencies struct {
	Config      config.Config
	Logger      *zap.Logger
	Registry    *prometheus.Registry
	Jobs        repository.JobRepository
	Acceptances repository.AcceptanceRepository
	Accounts    repository.AccountRepository
	Profiles    repository.ProfileRepository
	Revocations auth.RevocationList
	Google      auth.FederatedExchanger
	Dispatcher  events.Dispatcher
	Health      map[string]handlers.Pinger
}

// NewApp builds the fiber application with services, handlers and routes.
func NewApp(deps AppDependencies) *fiber.App {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher(logger)
	}
	metrics := observability.NewMetrics(registry)

	jobService := service.NewJobService(service.JobDependencies{
		JobRepo:        deps.Jobs,
		AcceptanceRepo: deps.Acceptances,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         logger,
	})
	acceptanceService := service.NewAcceptanceService(service.AcceptanceDependencies{
		JobRepo:        deps.Jobs,
		AcceptanceRepo: deps.Acceptances,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         logger,
	})
	authService := service.NewAuthService(deps.Config, service.AuthDependencies{
		AccountRepo: deps.Accounts,
		ProfileRepo: deps.Profiles,
		Revocations: deps.Revocations,
		Google:      deps.Google,
		Logger:      logger,
	})
	profileService := service.NewProfileService(deps.Profiles)

	app := fiber.New(fiber.Config{
		AppName:               deps.Config.App.Name,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, metrics, deps.Config.App.RequestTimeout())

	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(deps.Config.App.Name, deps.Config.App.Version, deps.Health),
		Jobs:           handlers.NewJobsHandler(jobService),
		Accepted:       handlers.NewAcceptedHandler(acceptanceService),
		Users:          handlers.NewUsersHandler(authService, profileService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), authService.Revocations()),
		RateLimiter:    auth.NewRateLimiter(deps.Config.RateLimit, logger),
		Metrics:        adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
	})
	return app
}
