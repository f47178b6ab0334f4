package user

import (
	"go-lms/internal/config"
	"go-lms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	controller *UserController
	config     *config.Config
	roles      middleware.RoleLookup
}

func NewUserApi(controller *UserController, config *config.Config, roles middleware.RoleLookup) *UserApi {
	return &UserApi{
		controller: controller,
		config:     config,
		roles:      roles,
	}
}

// Setup registers all user-related routes
func (h *UserApi) Setup(app *fiber.App) {
	users := app.Group("/api/users", middleware.AuthMiddleware(h.config, h.roles), middleware.AdminMiddleware())

	users.Post("/", h.controller.CreateUser)
	users.Get("/", h.controller.ListUsers)
	users.Get("/:id", h.controller.GetUser)
	users.Delete("/:id", h.controller.DeleteUser)

	users.Put("/:id/roles", h.controller.UpdateUserRoles)
	users.Put("/:id/status", h.controller.UpdateUserStatus)
}
