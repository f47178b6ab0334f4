package assessment

import (
	"go-lms/internal/config"
	"go-lms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AssessmentApi struct {
	assessmentController *AssessmentController
	attemptController    *AttemptController
	config               *config.Config
	roles                middleware.RoleLookup
}

func NewAssessmentApi(
	assessmentController *AssessmentController,
	attemptController *AttemptController,
	config *config.Config,
	roles middleware.RoleLookup,
) *AssessmentApi {
	return &AssessmentApi{
		assessmentController: assessmentController,
		attemptController:    attemptController,
		config:               config,
		roles:                roles,
	}
}

func (h *AssessmentApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.config, h.roles)

	app.Get("/api/modules/:moduleId/assessments", auth, h.assessmentController.ListAssessments)

	assessments := app.Group("/api/assessments", auth)
	assessments.Post("/", h.assessmentController.CreateAssessment)
	assessments.Get("/:id", h.assessmentController.GetAssessment)
	assessments.Put("/:id", h.assessmentController.UpdateAssessment)
	assessments.Delete("/:id", h.assessmentController.DeleteAssessment)
	assessments.Get("/:id/questions", h.assessmentController.ListQuestions)
	assessments.Post("/:id/submit", h.attemptController.SubmitAssessment)
	assessments.Post("/:id/attempts", h.attemptController.StartAttempt)
	assessments.Get("/:id/attempts", h.attemptController.ListAttempts)

	questions := app.Group("/api/questions", auth)
	questions.Post("/", h.assessmentController.CreateQuestion)
	questions.Get("/:id", h.assessmentController.GetQuestion)
	questions.Put("/:id", h.assessmentController.UpdateQuestion)
	questions.Delete("/:id", h.assessmentController.DeleteQuestion)

	attempts := app.Group("/api/attempts", auth)
	attempts.Get("/:id", h.attemptController.GetAttempt)
	attempts.Post("/:id/submit", h.attemptController.SubmitAttempt)
	attempts.Post("/:id/abandon", h.attemptController.AbandonAttempt)
}
