package middleware

import (
	"go-lms/internal/common/apperrors"

	"github.com/gofiber/fiber/v2"
)

// AdminMiddleware checks if the principal holds an administrative role
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := CurrentPrincipal(c)
		if err != nil {
			return err
		}

		if !principal.IsAdmin {
			return apperrors.Forbidden(apperrors.ReasonAdminRequired)
		}

		return c.Next()
	}
}
