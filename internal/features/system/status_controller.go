package system

import (
	"context"
	"time"

	"go-lms/internal/database"
	"go-lms/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const pingTimeout = 2 * time.Second

type StatusController struct {
	DB     *gorm.DB
	Mongo  *database.MongodbDB
	Logger *zap.Logger
}

func NewStatusController(db *gorm.DB, mongo *database.MongodbDB, logger *zap.Logger) *StatusController {
	return &StatusController{
		DB:     db,
		Mongo:  mongo,
		Logger: logger,
	}
}

// Health godoc
// @Summary      Service health
// @Description  Pings PostgreSQL and MongoDB
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (ctrl *StatusController) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), pingTimeout)
	defer cancel()

	checks := fiber.Map{"postgres": "ok", "mongodb": "ok"}
	healthy := true

	if sqlDB, err := ctrl.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["postgres"] = "unavailable"
		healthy = false
	}
	if err := ctrl.Mongo.DB.Client().Ping(ctx, nil); err != nil {
		checks["mongodb"] = "unavailable"
		healthy = false
	}

	status := "ok"
	if !healthy {
		ctrl.Logger.Warn("Health check failed", zap.Any("checks", checks))
		status = "degraded"
		c.Status(fiber.StatusServiceUnavailable)
	}
	return c.JSON(fiber.Map{"status": status, "checks": checks})
}

// Me godoc
// @Summary      Get current principal
// @Description  Returns the caller as resolved from the JWT
// @Tags         system
// @Produce      json
// @Success      200  {object}  models.Principal
// @Security     BearerAuth
// @Router       /api/me [get]
func (ctrl *StatusController) Me(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	return c.JSON(principal)
}
