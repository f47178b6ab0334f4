package middleware

import (
	"go-lms/internal/common/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error  string                 `json:"error"`
	Code   apperrors.Kind         `json:"code"`
	Fields []apperrors.FieldError `json:"fields,omitempty"`
}

// NewErrorHandler maps service errors to HTTP responses. Unknown errors are logged and
// reported as a generic 500.
func NewErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(errorResponse{
				Error: fiberErr.Message,
				Code:  fiberKind(fiberErr.Code),
			})
		}

		kind, status := apperrors.Classify(err)
		resp := errorResponse{Error: errors.Cause(err).Error(), Code: kind}

		switch kind {
		case apperrors.KindValidation:
			var vErr *apperrors.ValidationError
			if errors.As(err, &vErr) {
				resp.Error = vErr.Error()
				resp.Fields = vErr.Fields
			}
		case apperrors.KindInternal:
			logger.Error("Request failed",
				zap.Error(err),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			resp.Error = "internal server error"
		}

		return c.Status(status).JSON(resp)
	}
}

func fiberKind(code int) apperrors.Kind {
	switch code {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return apperrors.KindValidation
	case fiber.StatusUnauthorized:
		return apperrors.KindUnauthenticated
	case fiber.StatusForbidden:
		return apperrors.KindAuthorization
	case fiber.StatusNotFound:
		return apperrors.KindNotFound
	case fiber.StatusConflict:
		return apperrors.KindConflict
	default:
		return apperrors.KindInternal
	}
}
