package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/travel-request-service/internal/api/http/handlers"
	"github.com/spec-kit/travel-request-service/internal/auth"
	"github.com/spec-kit/travel-request-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	TravelRequests *handlers.TravelRequestsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/forgot-password", cfg.Auth.ForgotPassword)
	authGroup.Post("/reset-password", cfg.Auth.ResetPassword)
	authGroup.Get("/users", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleApprover), cfg.Auth.ListUsers)

	travelGroup := api.Group("/travelrequest", cfg.AuthMiddleware.Handle)
	travelGroup.Post("/", cfg.TravelRequests.Create)
	travelGroup.Get("/my-requests", cfg.TravelRequests.ListMine)
	travelGroup.Get("/all", auth.RequireRole(domain.RoleApprover), cfg.TravelRequests.ListAll)
	travelGroup.Put("/:id/status", auth.RequireRole(domain.RoleApprover), cfg.TravelRequests.UpdateStatus)
}
