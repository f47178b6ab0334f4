package system

import (
	"go-lms/internal/config"
	"go-lms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type StatusApi struct {
	controller *StatusController
	config     *config.Config
	roles      middleware.RoleLookup
}

func NewStatusApi(controller *StatusController, cfg *config.Config, roles middleware.RoleLookup) *StatusApi {
	return &StatusApi{
		controller: controller,
		config:     cfg,
		roles:      roles,
	}
}

// Setup registers health and identity routes
func (h *StatusApi) Setup(app *fiber.App) {
	app.Get("/health", h.controller.Health)
	app.Get("/api/me", middleware.AuthMiddleware(h.config, h.roles), h.controller.Me)
}
