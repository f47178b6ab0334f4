package section

import (
	common_api "go-lms/internal/common/api"
	"go-lms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SectionController struct {
	SectionService SectionService
}

func NewSectionController(sectionService SectionService) *SectionController {
	return &SectionController{
		SectionService: sectionService,
	}
}

// ListSections godoc
// @Summary      List the sections of a module
// @Description  Each section is checked on its own; sections the caller may not view are omitted.
// @Tags         sections
// @Produce      json
// @Param        moduleId path string true "Module ID"
// @Success      200  {array} Section
// @Failure      404  {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /api/modules/{moduleId}/sections [get]
func (ctrl *SectionController) ListSections(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	moduleID, err := common_api.ParamUUID(c, "moduleId")
	if err != nil {
		return err
	}
	sections, err := ctrl.SectionService.ListSections(c.UserContext(), principal, moduleID)
	if err != nil {
		return err
	}
	return c.JSON(sections)
}

// GetSection godoc
// @Summary      Get a section
// @Tags         sections
// @Produce      json
// @Param        id path string true "Section ID"
// @Success      200  {object} SectionDetail
// @Failure      403  {object} map[string]interface{}
// @Failure      404  {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /api/sections/{id} [get]
func (ctrl *SectionController) GetSection(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	sec, err := ctrl.SectionService.GetSection(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(sec)
}

// CreateSection godoc
// @Summary      Create a section
// @Tags         sections
// @Accept       json
// @Produce      json
// @Param        section body CreateSectionRequest true "Section"
// @Success      201  {object} Section
// @Failure      400  {object} map[string]interface{}
// @Failure      403  {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /api/sections [post]
func (ctrl *SectionController) CreateSection(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	var req CreateSectionRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return err
	}
	sec, err := ctrl.SectionService.CreateSection(c.UserContext(), principal, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(sec)
}

// UpdateSection godoc
// @Summary      Update a section
// @Tags         sections
// @Accept       json
// @Produce      json
// @Param        id      path string true "Section ID"
// @Param        section body UpdateSectionRequest true "Changes"
// @Success      200  {object} Section
// @Security     BearerAuth
// @Router       /api/sections/{id} [put]
func (ctrl *SectionController) UpdateSection(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateSectionRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return err
	}
	sec, err := ctrl.SectionService.UpdateSection(c.UserContext(), principal, id, req)
	if err != nil {
		return err
	}
	return c.JSON(sec)
}

// DeleteSection godoc
// @Summary      Delete a section
// @Tags         sections
// @Param        id path string true "Section ID"
// @Success      200  {object} map[string]string
// @Security     BearerAuth
// @Router       /api/sections/{id} [delete]
func (ctrl *SectionController) DeleteSection(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := ctrl.SectionService.DeleteSection(c.UserContext(), principal, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Section deleted successfully"})
}
