package apperrors

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantCode int
	}{
		{"validation", Validation("bad input"), KindValidation, http.StatusBadRequest},
		{"authorization", Forbidden(ReasonInsufficientPermission), KindAuthorization, http.StatusForbidden},
		{"not found", NotFound("module", uuid.New()), KindNotFound, http.StatusNotFound},
		{"conflict", Conflict("duplicate rule"), KindConflict, http.StatusConflict},
		{"attempt limit", AttemptLimitExceeded(3), KindAttemptLimit, http.StatusConflict},
		{"unauthenticated", Unauthenticated("missing token"), KindUnauthenticated, http.StatusUnauthorized},
		{"wrapped", errors.Wrap(NotFound("section", nil), "loading section"), KindNotFound, http.StatusNotFound},
		{"unknown", errors.New("boom"), KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, code := Classify(tt.err)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := Validation("", FieldError{Field: "title", Message: "this field is required"})
	assert.Equal(t, "title: this field is required", err.Error())
	assert.True(t, IsValidation(err))
	assert.False(t, IsConflict(err))
}

func TestAuthorizationErrorDoesNotLeakRules(t *testing.T) {
	err := Forbidden(ReasonInsufficientPermission)
	assert.Equal(t, "access denied: insufficient_permission", err.Error())
}
