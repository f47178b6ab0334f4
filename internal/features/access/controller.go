package access

import (
	common_api "go-lms/internal/common/api"
	"go-lms/internal/common/apperrors"
	"go-lms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RoleAccessController struct {
	Service RoleAccessService
}

func NewRoleAccessController(service RoleAccessService) *RoleAccessController {
	return &RoleAccessController{Service: service}
}

// SeedData godoc
// @Summary      Seed default access rules
// @Description  Adds a module-wide rule for every role and module lacking one. Admin roles get full access, others view only.
// @Tags         roleaccess
// @Produce      json
// @Success      200  {object} SeedResult
// @Security     BearerAuth
// @Router       /api/roleaccess/seed-data [post]
func (ctrl *RoleAccessController) SeedData(c *fiber.Ctx) error {
	result, err := ctrl.Service.SeedDefaults(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// ListRules godoc
// @Summary      List active access rules
// @Tags         roleaccess
// @Produce      json
// @Param        roleId   query string false "Filter by role"
// @Param        moduleId query string false "Filter by module"
// @Success      200  {array} AccessRule
// @Security     BearerAuth
// @Router       /api/roleaccess [get]
func (ctrl *RoleAccessController) ListRules(c *fiber.Ctx) error {
	roleID, err := common_api.QueryUUID(c, "roleId")
	if err != nil {
		return err
	}
	moduleID, err := common_api.QueryUUID(c, "moduleId")
	if err != nil {
		return err
	}

	rules, err := ctrl.Service.ListRules(c.UserContext(), RuleFilter{RoleID: roleID, ModuleID: moduleID})
	if err != nil {
		return err
	}
	return c.JSON(rules)
}

// GetRoleRules godoc
// @Summary      Active rules of a role
// @Tags         roleaccess
// @Produce      json
// @Param        roleId path string true "Role ID"
// @Success      200  {array} AccessRule
// @Failure      404  {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /api/roleaccess/{roleId} [get]
func (ctrl *RoleAccessController) GetRoleRules(c *fiber.Ctx) error {
	roleID, err := common_api.ParamUUID(c, "roleId")
	if err != nil {
		return err
	}
	rules, err := ctrl.Service.GetRulesForRole(c.UserContext(), roleID)
	if err != nil {
		return err
	}
	return c.JSON(rules)
}

// BulkUpdateRoleAccess godoc
// @Summary      Upsert many rules of a role
// @Description  All rules are validated first and applied in one transaction. One invalid rule means none are applied.
// @Tags         roleaccess
// @Accept       json
// @Produce      json
// @Param        roleId path string true "Role ID"
// @Param        body   body BulkUpdateRequest true "Rules"
// @Success      200  {object} BulkUpdateResult
// @Failure      400  {object} map[string]interface{}
// @Failure      409  {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /api/roleaccess/{roleId} [put]
func (ctrl *RoleAccessController) BulkUpdateRoleAccess(c *fiber.Ctx) error {
	roleID, err := common_api.ParamUUID(c, "roleId")
	if err != nil {
		return err
	}
	var req BulkUpdateRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return err
	}

	result, err := ctrl.Service.BulkUpdateRoleAccess(c.UserContext(), roleID, req)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// UpsertRule godoc
// @Summary      Create or update one rule
// @Tags         roleaccess
// @Accept       json
// @Produce      json
// @Param        rule body RuleInput true "Rule"
// @Success      200  {object} AccessRule
// @Failure      400  {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /api/roleaccess [post]
func (ctrl *RoleAccessController) UpsertRule(c *fiber.Ctx) error {
	var input RuleInput
	if err := common_api.ParseBody(c, &input); err != nil {
		return err
	}
	rule, err := ctrl.Service.UpsertRule(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.JSON(rule)
}

// DeactivateRule godoc
// @Summary      Deactivate a rule
// @Tags         roleaccess
// @Param        id path string true "Rule ID"
// @Success      200  {object} map[string]string
// @Security     BearerAuth
// @Router       /api/roleaccess/rules/{id} [delete]
func (ctrl *RoleAccessController) DeactivateRule(c *fiber.Ctx) error {
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := ctrl.Service.DeactivateRule(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Access rule deactivated"})
}

// Effective godoc
// @Summary      Caller's effective permissions on a module or section
// @Tags         roleaccess
// @Produce      json
// @Param        moduleId  query string true  "Module ID"
// @Param        sectionId query string false "Section ID"
// @Success      200  {object} Permissions
// @Security     BearerAuth
// @Router       /api/roleaccess/effective [get]
func (ctrl *RoleAccessController) Effective(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	moduleID, err := common_api.QueryUUID(c, "moduleId")
	if err != nil {
		return err
	}
	if moduleID == nil {
		return apperrors.Validation("moduleId is required", apperrors.FieldError{Field: "moduleId", Message: "this field is required"})
	}
	sectionID, err := common_api.QueryUUID(c, "sectionId")
	if err != nil {
		return err
	}

	perms, err := ctrl.Service.Effective(c.UserContext(), principal, *moduleID, sectionID)
	if err != nil {
		return err
	}
	return c.JSON(perms)
}
