package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hospital-directory/internal/api/http/handlers"
	"github.com/spec-kit/hospital-directory/internal/auth"
	"github.com/spec-kit/hospital-directory/internal/config"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Users           *handlers.UsersHandler
	Hospitals       *handlers.HospitalsHandler
	Specializations *handlers.SpecializationsHandler
	AuthMiddleware  *auth.AuthMiddleware
}

// NewApp builds the fiber application.
func NewApp(cfg config.AppConfig) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               cfg.Name,
		DisableStartupMessage: true,
		ErrorHandler:          fallbackErrorHandler,
	})
}

// RegisterRoutes wires HTTP routes. Reads are public; every write requires an
// admin principal.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api")

	users := api.Group("/users")
	users.Post("/register", cfg.Users.Register)
	users.Post("/login", cfg.Users.Login)
	users.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)

	adminOnly := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAdmin(), h}
	}

	hospitals := api.Group("/hospitals")
	hospitals.Get("/", cfg.Hospitals.List)
	hospitals.Get("/:id", cfg.Hospitals.Get)
	hospitals.Post("/", adminOnly(cfg.Hospitals.Create)...)
	hospitals.Put("/:id", adminOnly(cfg.Hospitals.Update)...)
	hospitals.Delete("/:id", adminOnly(cfg.Hospitals.Delete)...)

	specializations := api.Group("/specializations")
	specializations.Get("/", cfg.Specializations.List)
	specializations.Get("/:id", cfg.Specializations.Get)
	specializations.Post("/", adminOnly(cfg.Specializations.Create)...)
	specializations.Put("/:id", adminOnly(cfg.Specializations.Update)...)
	specializations.Delete("/:id", adminOnly(cfg.Specializations.Delete)...)
}
