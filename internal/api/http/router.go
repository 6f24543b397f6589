package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/defect-track/internal/api/http/handlers"
	"github.com/spec-kit/defect-track/internal/auth"
	"github.com/spec-kit/defect-track/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Defects        *handlers.DefectsHandler
	Comments       *handlers.CommentsHandler
	Photos         *handlers.PhotosHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/me", cfg.Users.Profile)
	users.Patch("/me", cfg.Users.UpdateProfile)
	users.Get("/", auth.RequireRole(domain.RoleAdmin), cfg.Users.List)
	users.Patch("/:id/roles", auth.RequireRole(domain.RoleAdmin), cfg.Users.UpdateRoles)

	defects := app.Group("/defects", cfg.AuthMiddleware.Handle)
	defects.Post("/", cfg.Defects.Create)
	defects.Get("/", cfg.Defects.List)
	defects.Get("/:id", cfg.Defects.Get)
	defects.Patch("/:id/status", cfg.Defects.UpdateStatus)
	defects.Delete("/:id", cfg.Defects.Cancel)
	defects.Get("/:id/history", cfg.Defects.History)

	defects.Post("/:id/comments", cfg.Comments.Create)
	defects.Get("/:id/comments", cfg.Comments.List)
	defects.Patch("/:id/comments/:commentId", cfg.Comments.Update)
	defects.Delete("/:id/comments/:commentId", cfg.Comments.Delete)

	defects.Post("/:id/photos", cfg.Photos.Upload)
	defects.Get("/:id/photos", cfg.Photos.List)
	defects.Delete("/:id/photos/:photoId", cfg.Photos.Delete)

	photos := app.Group("/photos", cfg.AuthMiddleware.Handle)
	photos.Get("/:id/file", cfg.Photos.File)
}
