package role

import (
	"go-lms/internal/config"
	"go-lms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RoleApi struct {
	controller  *RoleController
	config      *config.Config
	roleService RoleService
}

func NewRoleApi(controller *RoleController, cfg *config.Config, roleService RoleService) *RoleApi {
	return &RoleApi{
		controller:  controller,
		config:      cfg,
		roleService: roleService,
	}
}

// Setup registers role routes
func (h *RoleApi) Setup(app *fiber.App) {
	// Role management is reserved to administrators
	roles := app.Group("/api/roles", middleware.AuthMiddleware(h.config, h.roleService), middleware.AdminMiddleware())

	roles.Get("/", h.controller.ListRoles)
	roles.Post("/", h.controller.CreateRole)
	roles.Get("/:id", h.controller.GetRole)
	roles.Put("/:id", h.controller.UpdateRole)
	roles.Delete("/:id", h.controller.DeleteRole)
}
