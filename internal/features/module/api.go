package module

import (
	"go-lms/internal/config"
	"go-lms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ModuleApi struct {
	moduleController *ModuleController
	config           *config.Config
	roles            middleware.RoleLookup
}

func NewModuleApi(
	moduleController *ModuleController,
	config *config.Config,
	roles middleware.RoleLookup,
) *ModuleApi {
	return &ModuleApi{
		moduleController: moduleController,
		config:           config,
		roles:            roles,
	}
}

// Setup registers all module-related routes. Authorization happens in the service through
// the access resolver.
func (h *ModuleApi) Setup(app *fiber.App) {
	modules := app.Group("/api/modules", middleware.AuthMiddleware(h.config, h.roles))

	modules.Get("/", h.moduleController.ListModules)
	modules.Post("/", h.moduleController.CreateModule)
	modules.Get("/:id", h.moduleController.GetModule)
	modules.Put("/:id", h.moduleController.UpdateModule)
	modules.Delete("/:id", h.moduleController.DeleteModule)
}
