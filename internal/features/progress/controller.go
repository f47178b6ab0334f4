package progress

import (
	"fmt"

	common_api "go-lms/internal/common/api"
	"go-lms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ProgressController struct {
	ProgressService ProgressService
}

func NewProgressController(progressService ProgressService) *ProgressController {
	return &ProgressController{
		ProgressService: progressService,
	}
}

// CompleteLesson godoc
// @Summary      Mark a lesson completed
// @Description  Returns the caller's recomputed progress on the lesson's module.
// @Tags         progress
// @Produce      json
// @Param        id path string true "Lesson ID"
// @Success      200  {object} ModuleProgress
// @Failure      403  {object} map[string]interface{}
// @Failure      404  {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /api/lessons/{id}/complete [post]
func (ctrl *ProgressController) CompleteLesson(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	mp, err := ctrl.ProgressService.CompleteLesson(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(mp)
}

// ListMyProgress godoc
// @Summary      List the caller's module progress
// @Tags         progress
// @Produce      json
// @Success      200  {array} ModuleProgress
// @Security     BearerAuth
// @Router       /api/progress [get]
func (ctrl *ProgressController) ListMyProgress(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	list, err := ctrl.ProgressService.ListMyProgress(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// GetModuleProgress godoc
// @Summary      Get the caller's progress on a module
// @Tags         progress
// @Produce      json
// @Param        moduleId path string true "Module ID"
// @Success      200  {object} ModuleProgress
// @Security     BearerAuth
// @Router       /api/progress/modules/{moduleId} [get]
func (ctrl *ProgressController) GetModuleProgress(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	moduleID, err := common_api.ParamUUID(c, "moduleId")
	if err != nil {
		return err
	}
	mp, err := ctrl.ProgressService.GetModuleProgress(c.UserContext(), principal, moduleID)
	if err != nil {
		return err
	}
	return c.JSON(mp)
}

// ExportModuleProgress godoc
// @Summary      Export every learner's progress on a module
// @Description  Requires edit permission on the module.
// @Tags         progress
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        moduleId path string true "Module ID"
// @Success      200  {file} file
// @Failure      403  {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /api/progress/modules/{moduleId}/export [get]
func (ctrl *ProgressController) ExportModuleProgress(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	moduleID, err := common_api.ParamUUID(c, "moduleId")
	if err != nil {
		return err
	}
	export, err := ctrl.ProgressService.ExportModuleProgress(c.UserContext(), principal, moduleID)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", export.Filename))
	return c.Send(export.Content)
}
