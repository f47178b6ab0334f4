package system

import (
	"go-lms/internal/config"
	"go-lms/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type WebSocketApi struct {
	Controller *WebSocketController
	config     *config.Config
	roles      middleware.RoleLookup
}

func NewWebSocketApi(controller *WebSocketController, cfg *config.Config, roles middleware.RoleLookup) *WebSocketApi {
	return &WebSocketApi{
		Controller: controller,
		config:     cfg,
		roles:      roles,
	}
}

func (h *WebSocketApi) Setup(app *fiber.App) {
	// Browsers cannot set headers on the upgrade request, so the token may also come as ?token=.
	app.Get("/api/ws/progress",
		middleware.AuthMiddleware(h.config, h.roles),
		upgradeRequired,
		websocket.New(h.Controller.HandleProgressFeed))
}

func upgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}
