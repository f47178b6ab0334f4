package role

import (
	common_api "go-lms/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type RoleController struct {
	RoleService RoleService
}

func NewRoleController(roleService RoleService) *RoleController {
	return &RoleController{RoleService: roleService}
}

// ListRoles godoc
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Success      200  {array} Role
// @Security     BearerAuth
// @Router       /api/roles [get]
func (ctrl *RoleController) ListRoles(c *fiber.Ctx) error {
	roles, err := ctrl.RoleService.ListRoles(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(roles)
}

// CreateRole godoc
// @Summary      Create a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        role body CreateRoleRequest true "Role"
// @Success      201  {object} Role
// @Failure      400  {object} map[string]interface{}
// @Failure      409  {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /api/roles [post]
func (ctrl *RoleController) CreateRole(c *fiber.Ctx) error {
	var req CreateRoleRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return err
	}

	created, err := ctrl.RoleService.CreateRole(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetRole godoc
// @Summary      Get a role
// @Tags         roles
// @Produce      json
// @Param        id path string true "Role ID"
// @Success      200  {object} Role
// @Failure      404  {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /api/roles/{id} [get]
func (ctrl *RoleController) GetRole(c *fiber.Ctx) error {
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	role, err := ctrl.RoleService.GetRoleByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(role)
}

// UpdateRole godoc
// @Summary      Update a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        id   path string true "Role ID"
// @Param        role body UpdateRoleRequest true "Changes"
// @Success      200  {object} Role
// @Security     BearerAuth
// @Router       /api/roles/{id} [put]
func (ctrl *RoleController) UpdateRole(c *fiber.Ctx) error {
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateRoleRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return err
	}
	role, err := ctrl.RoleService.UpdateRole(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(role)
}

// DeleteRole godoc
// @Summary      Delete a role
// @Description  Removes the role together with its access rules and user assignments.
// @Tags         roles
// @Param        id path string true "Role ID"
// @Success      200  {object} map[string]string
// @Security     BearerAuth
// @Router       /api/roles/{id} [delete]
func (ctrl *RoleController) DeleteRole(c *fiber.Ctx) error {
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := ctrl.RoleService.DeleteRole(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Role deleted successfully"})
}
