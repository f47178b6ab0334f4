package access

import (
	"go-lms/internal/config"
	"go-lms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RoleAccessApi struct {
	Controller *RoleAccessController
	config     *config.Config
	roles      middleware.RoleLookup
}

func NewRoleAccessApi(controller *RoleAccessController, config *config.Config, roles middleware.RoleLookup) *RoleAccessApi {
	return &RoleAccessApi{
		Controller: controller,
		config:     config,
		roles:      roles,
	}
}

func (a *RoleAccessApi) Setup(app *fiber.App) {
	ra := app.Group("/api/roleaccess", middleware.AuthMiddleware(a.config, a.roles))

	// Any authenticated user may ask what they can do
	ra.Get("/effective", a.Controller.Effective)

	admin := middleware.AdminMiddleware()
	ra.Post("/seed-data", admin, a.Controller.SeedData)
	ra.Get("/", admin, a.Controller.ListRules)
	ra.Post("/", admin, a.Controller.UpsertRule)
	ra.Delete("/rules/:id", admin, a.Controller.DeactivateRule)
	ra.Get("/:roleId", admin, a.Controller.GetRoleRules)
	ra.Put("/:roleId", admin, a.Controller.BulkUpdateRoleAccess)
}
