package auth

import (
	"go-lms/internal/config"
	"go-lms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	controller *AuthController
	config     *config.Config
	roles      middleware.RoleLookup
}

func NewAuthApi(controller *AuthController, config *config.Config, roles middleware.RoleLookup) *AuthApi {
	return &AuthApi{
		controller: controller,
		config:     config,
		roles:      roles,
	}
}

// Setup registers all auth-related routes
func (h *AuthApi) Setup(app *fiber.App) {
	auth := app.Group("/api/auth")

	// Public routes
	auth.Post("/register", h.controller.Register)
	auth.Post("/login", h.controller.Login)

	auth.Get("/me", middleware.AuthMiddleware(h.config, h.roles), h.controller.Me)
}
