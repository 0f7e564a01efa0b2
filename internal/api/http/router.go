package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/jobboard/internal/api/http/handlers"
	"github.com/spec-kit/jobboard/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Jobs           *handlers.JobsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	api := app.Group("/api")

	api.Get("/health", cfg.Health.Health)
	api.Get("/health/ready", cfg.Health.Ready)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
	authGroup.Patch("/me", cfg.AuthMiddleware.Handle, cfg.Auth.UpdateMe)

	jobs := api.Group("/jobs", cfg.AuthMiddleware.Handle)
	jobs.Get("/", cfg.Jobs.ListJobs)
	jobs.Post("/", cfg.Jobs.CreateJob)
	jobs.Patch("/:id", cfg.Jobs.UpdateJob)
	jobs.Delete("/:id", cfg.Jobs.DeleteJob)
}
