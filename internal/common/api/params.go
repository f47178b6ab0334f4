package api

import (
	"go-lms/internal/common/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ParamUUID parses the named path parameter as a UUID.
func ParamUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid "+name, apperrors.FieldError{Field: name, Message: "must be a UUID"})
	}
	return id, nil
}

// QueryUUID parses an optional query parameter. An absent parameter yields nil.
func QueryUUID(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperrors.Validation("invalid "+name, apperrors.FieldError{Field: name, Message: "must be a UUID"})
	}
	return &id, nil
}

// ParseBody decodes the request body, reporting malformed JSON as a validation error.
func ParseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.Validation("Invalid request body")
	}
	return nil
}
