package module

import (
	common_api "go-lms/internal/common/api"
	"go-lms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ModuleController struct {
	ModuleService ModuleService
}

func NewModuleController(moduleService ModuleService) *ModuleController {
	return &ModuleController{
		ModuleService: moduleService,
	}
}

// ListModules godoc
// @Summary      List modules
// @Description  Only modules the caller may view are returned.
// @Tags         modules
// @Produce      json
// @Param        category         query string false "Category"
// @Param        include_inactive query bool   false "Include inactive modules (administrators)"
// @Success      200  {array} Module
// @Security     BearerAuth
// @Router       /api/modules [get]
func (ctrl *ModuleController) ListModules(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	filter := ModuleFilter{
		Category:        c.Query("category"),
		IncludeInactive: c.QueryBool("include_inactive", false),
	}
	modules, err := ctrl.ModuleService.ListModules(c.UserContext(), principal, filter)
	if err != nil {
		return err
	}
	return c.JSON(modules)
}

// GetModule godoc
// @Summary      Get a module
// @Tags         modules
// @Produce      json
// @Param        id path string true "Module ID"
// @Success      200  {object} ModuleDetail
// @Failure      403  {object} map[string]interface{}
// @Failure      404  {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /api/modules/{id} [get]
func (ctrl *ModuleController) GetModule(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	m, err := ctrl.ModuleService.GetModule(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(m)
}

// CreateModule godoc
// @Summary      Create a module
// @Tags         modules
// @Accept       json
// @Produce      json
// @Param        module body CreateModuleRequest true "Module"
// @Success      201  {object} Module
// @Failure      400  {object} map[string]interface{}
// @Failure      403  {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /api/modules [post]
func (ctrl *ModuleController) CreateModule(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	var req CreateModuleRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return err
	}
	m, err := ctrl.ModuleService.CreateModule(c.UserContext(), principal, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

// UpdateModule godoc
// @Summary      Update a module
// @Tags         modules
// @Accept       json
// @Produce      json
// @Param        id     path string true "Module ID"
// @Param        module body UpdateModuleRequest true "Changes"
// @Success      200  {object} Module
// @Security     BearerAuth
// @Router       /api/modules/{id} [put]
func (ctrl *ModuleController) UpdateModule(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateModuleRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return err
	}
	m, err := ctrl.ModuleService.UpdateModule(c.UserContext(), principal, id, req)
	if err != nil {
		return err
	}
	return c.JSON(m)
}

// DeleteModule godoc
// @Summary      Delete a module
// @Description  Sections, lessons, assessments, access rules and progress of the module are removed with it.
// @Tags         modules
// @Param        id path string true "Module ID"
// @Success      200  {object} map[string]string
// @Security     BearerAuth
// @Router       /api/modules/{id} [delete]
func (ctrl *ModuleController) DeleteModule(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := ctrl.ModuleService.DeleteModule(c.UserContext(), principal, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Module deleted successfully"})
}
