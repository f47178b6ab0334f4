package lesson

import (
	common_api "go-lms/internal/common/api"
	"go-lms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type LessonController struct {
	LessonService LessonService
}

func NewLessonController(lessonService LessonService) *LessonController {
	return &LessonController{
		LessonService: lessonService,
	}
}

// ListLessons godoc
// @Summary      List the lessons of a section
// @Tags         lessons
// @Produce      json
// @Param        sectionId path string true "Section ID"
// @Success      200  {array} Lesson
// @Failure      403  {object} map[string]interface{}
// @Failure      404  {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /api/sections/{sectionId}/lessons [get]
func (ctrl *LessonController) ListLessons(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	sectionID, err := common_api.ParamUUID(c, "sectionId")
	if err != nil {
		return err
	}
	lessons, err := ctrl.LessonService.ListLessons(c.UserContext(), principal, sectionID)
	if err != nil {
		return err
	}
	return c.JSON(lessons)
}

// GetLesson godoc
// @Summary      Get a lesson
// @Description  Reading a lesson records the caller's last access time.
// @Tags         lessons
// @Produce      json
// @Param        id path string true "Lesson ID"
// @Success      200  {object} LessonDetail
// @Failure      403  {object} map[string]interface{}
// @Failure      404  {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /api/lessons/{id} [get]
func (ctrl *LessonController) GetLesson(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	l, err := ctrl.LessonService.GetLesson(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(l)
}

// CreateLesson godoc
// @Summary      Create a lesson
// @Tags         lessons
// @Accept       json
// @Produce      json
// @Param        lesson body CreateLessonRequest true "Lesson"
// @Success      201  {object} Lesson
// @Failure      400  {object} map[string]interface{}
// @Failure      403  {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /api/lessons [post]
func (ctrl *LessonController) CreateLesson(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	var req CreateLessonRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return err
	}
	l, err := ctrl.LessonService.CreateLesson(c.UserContext(), principal, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(l)
}

// UpdateLesson godoc
// @Summary      Update a lesson
// @Tags         lessons
// @Accept       json
// @Produce      json
// @Param        id     path string true "Lesson ID"
// @Param        lesson body UpdateLessonRequest true "Changes"
// @Success      200  {object} Lesson
// @Security     BearerAuth
// @Router       /api/lessons/{id} [put]
func (ctrl *LessonController) UpdateLesson(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateLessonRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return err
	}
	l, err := ctrl.LessonService.UpdateLesson(c.UserContext(), principal, id, req)
	if err != nil {
		return err
	}
	return c.JSON(l)
}

// DeleteLesson godoc
// @Summary      Delete a lesson
// @Tags         lessons
// @Param        id path string true "Lesson ID"
// @Success      200  {object} map[string]string
// @Security     BearerAuth
// @Router       /api/lessons/{id} [delete]
func (ctrl *LessonController) DeleteLesson(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := ctrl.LessonService.DeleteLesson(c.UserContext(), principal, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Lesson deleted successfully"})
}
