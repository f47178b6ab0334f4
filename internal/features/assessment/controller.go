package assessment

import (
	common_api "go-lms/internal/common/api"
	"go-lms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AssessmentController struct {
	AssessmentService AssessmentService
}

func NewAssessmentController(assessmentService AssessmentService) *AssessmentController {
	return &AssessmentController{
		AssessmentService: assessmentService,
	}
}

// ListAssessments godoc
// @Summary      List the assessments of a module
// @Tags         assessments
// @Produce      json
// @Param        moduleId path string true "Module ID"
// @Success      200  {array} Assessment
// @Security     BearerAuth
// @Router       /api/modules/{moduleId}/assessments [get]
func (ctrl *AssessmentController) ListAssessments(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	moduleID, err := common_api.ParamUUID(c, "moduleId")
	if err != nil {
		return err
	}
	list, err := ctrl.AssessmentService.ListAssessments(c.UserContext(), principal, moduleID)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// GetAssessment godoc
// @Summary      Get an assessment
// @Tags         assessments
// @Produce      json
// @Param        id path string true "Assessment ID"
// @Success      200  {object} AssessmentDetail
// @Failure      403  {object} map[string]interface{}
// @Failure      404  {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /api/assessments/{id} [get]
func (ctrl *AssessmentController) GetAssessment(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	a, err := ctrl.AssessmentService.GetAssessment(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(a)
}

// CreateAssessment godoc
// @Summary      Create an assessment
// @Tags         assessments
// @Accept       json
// @Produce      json
// @Param        assessment body CreateAssessmentRequest true "Assessment"
// @Success      201  {object} Assessment
// @Failure      400  {object} map[string]interface{}
// @Failure      403  {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /api/assessments [post]
func (ctrl *AssessmentController) CreateAssessment(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	var req CreateAssessmentRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return err
	}
	a, err := ctrl.AssessmentService.CreateAssessment(c.UserContext(), principal, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

// UpdateAssessment godoc
// @Summary      Update an assessment
// @Tags         assessments
// @Accept       json
// @Produce      json
// @Param        id         path string true "Assessment ID"
// @Param        assessment body UpdateAssessmentRequest true "Changes"
// @Success      200  {object} Assessment
// @Security     BearerAuth
// @Router       /api/assessments/{id} [put]
func (ctrl *AssessmentController) UpdateAssessment(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateAssessmentRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return err
	}
	a, err := ctrl.AssessmentService.UpdateAssessment(c.UserContext(), principal, id, req)
	if err != nil {
		return err
	}
	return c.JSON(a)
}

// DeleteAssessment godoc
// @Summary      Delete an assessment
// @Tags         assessments
// @Param        id path string true "Assessment ID"
// @Success      200  {object} map[string]string
// @Security     BearerAuth
// @Router       /api/assessments/{id} [delete]
func (ctrl *AssessmentController) DeleteAssessment(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := ctrl.AssessmentService.DeleteAssessment(c.UserContext(), principal, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Assessment deleted successfully"})
}

// ListQuestions godoc
// @Summary      List the questions of an assessment
// @Description  The answer key is only returned to callers who may edit the assessment.
// @Tags         questions
// @Produce      json
// @Param        id path string true "Assessment ID"
// @Success      200  {array} Question
// @Security     BearerAuth
// @Router       /api/assessments/{id}/questions [get]
func (ctrl *AssessmentController) ListQuestions(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	questions, err := ctrl.AssessmentService.ListQuestions(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(questions)
}

// GetQuestion godoc
// @Summary      Get a question
// @Tags         questions
// @Produce      json
// @Param        id path string true "Question ID"
// @Success      200  {object} Question
// @Security     BearerAuth
// @Router       /api/questions/{id} [get]
func (ctrl *AssessmentController) GetQuestion(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	q, err := ctrl.AssessmentService.GetQuestion(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(q)
}

// CreateQuestion godoc
// @Summary      Create a question
// @Tags         questions
// @Accept       json
// @Produce      json
// @Param        question body CreateQuestionRequest true "Question"
// @Success      201  {object} Question
// @Failure      400  {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /api/questions [post]
func (ctrl *AssessmentController) CreateQuestion(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	var req CreateQuestionRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return err
	}
	q, err := ctrl.AssessmentService.CreateQuestion(c.UserContext(), principal, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(q)
}

// UpdateQuestion godoc
// @Summary      Update a question
// @Tags         questions
// @Accept       json
// @Produce      json
// @Param        id       path string true "Question ID"
// @Param        question body UpdateQuestionRequest true "Changes"
// @Success      200  {object} Question
// @Security     BearerAuth
// @Router       /api/questions/{id} [put]
func (ctrl *AssessmentController) UpdateQuestion(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateQuestionRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return err
	}
	q, err := ctrl.AssessmentService.UpdateQuestion(c.UserContext(), principal, id, req)
	if err != nil {
		return err
	}
	return c.JSON(q)
}

// DeleteQuestion godoc
// @Summary      Delete a question
// @Tags         questions
// @Param        id path string true "Question ID"
// @Success      200  {object} map[string]string
// @Security     BearerAuth
// @Router       /api/questions/{id} [delete]
func (ctrl *AssessmentController) DeleteQuestion(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := ctrl.AssessmentService.DeleteQuestion(c.UserContext(), principal, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Question deleted successfully"})
}
