package progress

import (
	"go-lms/internal/config"
	"go-lms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ProgressApi struct {
	progressController *ProgressController
	config             *config.Config
	roles              middleware.RoleLookup
}

func NewProgressApi(
	progressController *ProgressController,
	config *config.Config,
	roles middleware.RoleLookup,
) *ProgressApi {
	return &ProgressApi{
		progressController: progressController,
		config:             config,
		roles:              roles,
	}
}

func (h *ProgressApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.config, h.roles)

	app.Post("/api/lessons/:id/complete", auth, h.progressController.CompleteLesson)

	progress := app.Group("/api/progress", auth)
	progress.Get("/", h.progressController.ListMyProgress)
	progress.Get("/modules/:moduleId", h.progressController.GetModuleProgress)
	progress.Get("/modules/:moduleId/export", h.progressController.ExportModuleProgress)
}
