package audit

import (
	"go-lms/internal/config"
	"go-lms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller *AuditController
	config     *config.Config
	roles      middleware.RoleLookup
}

func NewAuditApi(controller *AuditController, config *config.Config, roles middleware.RoleLookup) *AuditApi {
	return &AuditApi{
		controller: controller,
		config:     config,
		roles:      roles,
	}
}

func (h *AuditApi) Setup(app *fiber.App) {
	audit := app.Group("/api/audit-logs", middleware.AuthMiddleware(h.config, h.roles), middleware.AdminMiddleware())

	audit.Get("/", h.controller.ListLogs)
}
