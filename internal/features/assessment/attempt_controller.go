package assessment

import (
	common_api "go-lms/internal/common/api"
	"go-lms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AttemptController struct {
	AttemptService AttemptService
}

func NewAttemptController(attemptService AttemptService) *AttemptController {
	return &AttemptController{
		AttemptService: attemptService,
	}
}

// StartAttempt godoc
// @Summary      Start an attempt
// @Description  Returns the caller's open attempt if there is one.
// @Tags         attempts
// @Produce      json
// @Param        id path string true "Assessment ID"
// @Success      201  {object} Attempt
// @Failure      409  {object} map[string]interface{} "attempt_limit_exceeded"
// @Security     BearerAuth
// @Router       /api/assessments/{id}/attempts [post]
func (ctrl *AttemptController) StartAttempt(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	attempt, err := ctrl.AttemptService.StartAttempt(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(attempt)
}

// ListAttempts godoc
// @Summary      List attempts on an assessment
// @Description  Learners see their own attempts; editors of the assessment see everyone's.
// @Tags         attempts
// @Produce      json
// @Param        id path string true "Assessment ID"
// @Success      200  {array} Attempt
// @Security     BearerAuth
// @Router       /api/assessments/{id}/attempts [get]
func (ctrl *AttemptController) ListAttempts(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	attempts, err := ctrl.AttemptService.ListAttempts(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(attempts)
}

// SubmitAssessment godoc
// @Summary      Submit answers in one step
// @Tags         attempts
// @Accept       json
// @Produce      json
// @Param        id         path string true "Assessment ID"
// @Param        submission body SubmitAssessmentRequest true "Answers"
// @Success      200  {object} Attempt
// @Failure      409  {object} map[string]interface{} "attempt_limit_exceeded"
// @Security     BearerAuth
// @Router       /api/assessments/{id}/submit [post]
func (ctrl *AttemptController) SubmitAssessment(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req SubmitAssessmentRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return err
	}
	attempt, err := ctrl.AttemptService.SubmitAssessment(c.UserContext(), principal, id, req)
	if err != nil {
		return err
	}
	return c.JSON(attempt)
}

// GetAttempt godoc
// @Summary      Get an attempt
// @Tags         attempts
// @Produce      json
// @Param        id path string true "Attempt ID"
// @Success      200  {object} Attempt
// @Security     BearerAuth
// @Router       /api/attempts/{id} [get]
func (ctrl *AttemptController) GetAttempt(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	attempt, err := ctrl.AttemptService.GetAttempt(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(attempt)
}

// SubmitAttempt godoc
// @Summary      Submit an open attempt
// @Tags         attempts
// @Accept       json
// @Produce      json
// @Param        id         path string true "Attempt ID"
// @Param        submission body SubmitAttemptRequest true "Answers"
// @Success      200  {object} Attempt
// @Failure      409  {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /api/attempts/{id}/submit [post]
func (ctrl *AttemptController) SubmitAttempt(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req SubmitAttemptRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return err
	}
	attempt, err := ctrl.AttemptService.SubmitAttempt(c.UserContext(), principal, id, req)
	if err != nil {
		return err
	}
	return c.JSON(attempt)
}

// AbandonAttempt godoc
// @Summary      Abandon an open attempt
// @Tags         attempts
// @Produce      json
// @Param        id path string true "Attempt ID"
// @Success      200  {object} Attempt
// @Security     BearerAuth
// @Router       /api/attempts/{id}/abandon [post]
func (ctrl *AttemptController) AbandonAttempt(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := common_api.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	attempt, err := ctrl.AttemptService.AbandonAttempt(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(attempt)
}
