package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-board/internal/api/http/handlers"
	"github.com/spec-kit/job-board/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Jobs           *handlers.JobsHandler
	Accepted       *handlers.AcceptedHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
	RateLimiter    *auth.RateLimiter
	Metrics        fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	requireAuth := cfg.AuthMiddleware.Handle
	limit := cfg.RateLimiter.Handle

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	app.Get("/jobs", cfg.Jobs.ListJobs)
	app.Get("/jobs/:id", cfg.Jobs.GetJob)
	app.Post("/jobs", requireAuth, limit, cfg.Jobs.CreateJob)
	app.Put("/jobs/:id", requireAuth, limit, cfg.Jobs.UpdateJob)
	app.Delete("/jobs/:id", requireAuth, limit, cfg.Jobs.DeleteJob)

	app.Post("/accepted", requireAuth, limit, cfg.Accepted.Accept)
	app.Get("/accepted", requireAuth, cfg.Accepted.List)
	app.Delete("/accepted/:id", requireAuth, limit, cfg.Accepted.Remove)

	app.Post("/users", limit, cfg.Users.RegisterProfile)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", limit, cfg.Users.Register)
	authGroup.Post("/login", limit, cfg.Users.Login)
	authGroup.Post("/federated", limit, cfg.Users.Federated)
	authGroup.Post("/logout", requireAuth, cfg.Users.Logout)
	authGroup.Get("/me", requireAuth, cfg.Users.Me)
}
