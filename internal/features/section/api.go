package section

import (
	"go-lms/internal/config"
	"go-lms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SectionApi struct {
	sectionController *SectionController
	config            *config.Config
	roles             middleware.RoleLookup
}

func NewSectionApi(
	sectionController *SectionController,
	config *config.Config,
	roles middleware.RoleLookup,
) *SectionApi {
	return &SectionApi{
		sectionController: sectionController,
		config:            config,
		roles:             roles,
	}
}

func (h *SectionApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.config, h.roles)

	app.Get("/api/modules/:moduleId/sections", auth, h.sectionController.ListSections)

	sections := app.Group("/api/sections", auth)
	sections.Post("/", h.sectionController.CreateSection)
	sections.Get("/:id", h.sectionController.GetSection)
	sections.Put("/:id", h.sectionController.UpdateSection)
	sections.Delete("/:id", h.sectionController.DeleteSection)
}
