package lesson

import (
	"go-lms/internal/config"
	"go-lms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type LessonApi struct {
	lessonController *LessonController
	config           *config.Config
	roles            middleware.RoleLookup
}

func NewLessonApi(
	lessonController *LessonController,
	config *config.Config,
	roles middleware.RoleLookup,
) *LessonApi {
	return &LessonApi{
		lessonController: lessonController,
		config:           config,
		roles:            roles,
	}
}

// Setup registers lesson CRUD. Completion lives with the progress routes.
func (h *LessonApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.config, h.roles)

	app.Get("/api/sections/:sectionId/lessons", auth, h.lessonController.ListLessons)

	lessons := app.Group("/api/lessons", auth)
	lessons.Post("/", h.lessonController.CreateLesson)
	lessons.Get("/:id", h.lessonController.GetLesson)
	lessons.Put("/:id", h.lessonController.UpdateLesson)
	lessons.Delete("/:id", h.lessonController.DeleteLesson)
}
