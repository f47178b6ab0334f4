package user

import (
	common_api "go-lms/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	UserService UserService
}

func NewUserController(userService UserService) *UserController {
	return &UserController{UserService: userService}
}

// ListUsers godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        page  query int false "Page"
// @Param        limit query int false "Page size"
// @Success      200  {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /api/users [get]
func (ctrl *UserController) ListUsers(c *fiber.Ctx) error {
	users, pagination, err := ctrl.UserService.ListUsers(c.UserContext(), c.QueryInt("page", 1), c.QueryInt("limit", 50))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":       users,
		"pagination": pagination,
	})
}

// CreateUser godoc
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user body CreateUserRequest true "User"
// @Success      201  {object} UserView
// @Security     BearerAuth
// @Router       /api/users [post]
func (ctrl *UserController) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return err
	}
	created, err := ctrl.UserService.CreateUser(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetUser godoc
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200  {object} UserView
// @Security     BearerAuth
// @Router       /api/users/{id} [get]
func (ctrl *UserController) GetUser(c *fiber.Ctx) error {
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	u, err := ctrl.UserService.GetUserByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(u)
}

// UpdateUserRoles godoc
// @Summary      Replace a user's roles
// @Tags         users
// @Accept       json
// @Param        id   path string true "User ID"
// @Param        body body UpdateUserRolesRequest true "Role IDs"
// @Success      200  {object} map[string]string
// @Security     BearerAuth
// @Router       /api/users/{id}/roles [put]
func (ctrl *UserController) UpdateUserRoles(c *fiber.Ctx) error {
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateUserRolesRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return err
	}
	if err := ctrl.UserService.UpdateUserRoles(c.UserContext(), id, req.RoleIDs); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User roles updated successfully"})
}

// UpdateUserStatus godoc
// @Summary      Activate or deactivate a user
// @Tags         users
// @Accept       json
// @Param        id   path string true "User ID"
// @Param        body body UpdateUserStatusRequest true "Status"
// @Success      200  {object} map[string]string
// @Security     BearerAuth
// @Router       /api/users/{id}/status [put]
func (ctrl *UserController) UpdateUserStatus(c *fiber.Ctx) error {
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateUserStatusRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return err
	}
	if req.IsActive == nil {
		return fiber.NewError(fiber.StatusBadRequest, "is_active is required")
	}
	if err := ctrl.UserService.UpdateUserStatus(c.UserContext(), id, *req.IsActive); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User status updated successfully"})
}

// DeleteUser godoc
// @Summary      Delete a user
// @Tags         users
// @Param        id path string true "User ID"
// @Success      200  {object} map[string]string
// @Security     BearerAuth
// @Router       /api/users/{id} [delete]
func (ctrl *UserController) DeleteUser(c *fiber.Ctx) error {
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := ctrl.UserService.DeleteUser(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
