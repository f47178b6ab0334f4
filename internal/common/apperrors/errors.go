// Package apperrors defines the error taxonomy shared by every service. Services return these
// types (optionally wrapped with github.com/pkg/errors) and the HTTP error handler maps them to
// status codes in one place.
package apperrors

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

type Kind string

const (
	KindValidation      Kind = "validation_error"
	KindAuthorization   Kind = "authorization_error"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindAttemptLimit    Kind = "attempt_limit_exceeded"
	KindUnauthenticated Kind = "unauthenticated"
	KindInternal        Kind = "internal_error"
)

// Reason categories returned with an AuthorizationError. They never describe rule contents.
const (
	ReasonInsufficientPermission = "insufficient_permission"
	ReasonAdminRequired          = "admin_required"
	ReasonNotOwner               = "not_owner"
)

// FieldError is used to indicate an error with a specific request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if e.Message == "" && len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s", e.Fields[0].Field, e.Fields[0].Message)
	}
	return e.Message
}

func Validation(msg string, fields ...FieldError) error {
	return &ValidationError{Message: msg, Fields: fields}
}

type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "access denied: " + e.Reason
}

func Forbidden(reason string) error {
	return &AuthorizationError{Reason: reason}
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func NotFound(entity string, id fmt.Stringer) error {
	if id == nil {
		return &NotFoundError{Entity: entity}
	}
	return &NotFoundError{Entity: entity, ID: id.String()}
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func Conflict(msg string) error {
	return &ConflictError{Message: msg}
}

type AttemptLimitExceededError struct {
	MaxAttempts int
}

func (e *AttemptLimitExceededError) Error() string {
	return fmt.Sprintf("maximum number of attempts (%d) reached", e.MaxAttempts)
}

func AttemptLimitExceeded(max int) error {
	return &AttemptLimitExceededError{MaxAttempts: max}
}

type UnauthenticatedError struct {
	Message string
}

func (e *UnauthenticatedError) Error() string { return e.Message }

func Unauthenticated(msg string) error {
	return &UnauthenticatedError{Message: msg}
}

// Classify returns the kind and HTTP status code for err. Unknown errors are internal.
func Classify(err error) (Kind, int) {
	var (
		vErr *ValidationError
		aErr *AuthorizationError
		nErr *NotFoundError
		cErr *ConflictError
		lErr *AttemptLimitExceededError
		uErr *UnauthenticatedError
	)
	switch {
	case err == nil:
		return "", http.StatusOK
	case errors.As(err, &vErr):
		return KindValidation, http.StatusBadRequest
	case errors.As(err, &aErr):
		return KindAuthorization, http.StatusForbidden
	case errors.As(err, &nErr):
		return KindNotFound, http.StatusNotFound
	case errors.As(err, &lErr):
		return KindAttemptLimit, http.StatusConflict
	case errors.As(err, &cErr):
		return KindConflict, http.StatusConflict
	case errors.As(err, &uErr):
		return KindUnauthenticated, http.StatusUnauthorized
	default:
		return KindInternal, http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool {
	var nErr *NotFoundError
	return errors.As(err, &nErr)
}

func IsAuthorization(err error) bool {
	var aErr *AuthorizationError
	return errors.As(err, &aErr)
}

func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

func IsConflict(err error) bool {
	var cErr *ConflictError
	return errors.As(err, &cErr)
}

func IsAttemptLimitExceeded(err error) bool {
	var lErr *AttemptLimitExceededError
	return errors.As(err, &lErr)
}
