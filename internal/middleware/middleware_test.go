package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-lms/internal/common/apperrors"
	"go-lms/internal/common/models"
	"go-lms/internal/config"
	"go-lms/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRoleLookup struct {
	ids      map[string]uuid.UUID
	admin    map[string]bool
	disabled map[uuid.UUID]bool
}

func (f *fakeRoleLookup) UserActive(ctx context.Context, userID uuid.UUID) (bool, error) {
	return !f.disabled[userID], nil
}

func (f *fakeRoleLookup) LookupRoles(ctx context.Context, names []string) ([]uuid.UUID, bool, error) {
	var ids []uuid.UUID
	isAdmin := false
	for _, n := range names {
		if id, ok := f.ids[n]; ok {
			ids = append(ids, id)
			isAdmin = isAdmin || f.admin[n]
		}
	}
	return ids, isAdmin, nil
}

func newTestApp(cfg *config.Config, lookup RoleLookup) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(zap.NewNop())})
	app.Get("/me", AuthMiddleware(cfg, lookup), func(c *fiber.Ctx) error {
		p, err := CurrentPrincipal(c)
		if err != nil {
			return err
		}
		return c.JSON(p)
	})
	app.Get("/admin", AuthMiddleware(cfg, lookup), AdminMiddleware(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func decodeError(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestAuthMiddlewareBuildsPrincipal(t *testing.T) {
	utils.SetSecret("middleware-secret")
	learnerID := uuid.New()
	lookup := &fakeRoleLookup{ids: map[string]uuid.UUID{"Learner": learnerID}}
	app := newTestApp(&config.Config{}, lookup)

	userID := uuid.New()
	token, err := utils.GenerateToken(userID, "lena", []string{"Learner"}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p models.Principal
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, []uuid.UUID{learnerID}, p.RoleIDs)
	assert.False(t, p.IsAdmin)
}

func TestAuthMiddlewareRejectsMissingOrBadToken(t *testing.T) {
	utils.SetSecret("middleware-secret")
	app := newTestApp(&config.Config{}, &fakeRoleLookup{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, apperrors.KindUnauthenticated, decodeError(t, resp).Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareAcceptsQueryToken(t *testing.T) {
	utils.SetSecret("middleware-secret")
	app := newTestApp(&config.Config{}, &fakeRoleLookup{})
	token, err := utils.GenerateToken(uuid.New(), "ws", nil, time.Hour)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminMiddleware(t *testing.T) {
	utils.SetSecret("middleware-secret")
	lookup := &fakeRoleLookup{
		ids:   map[string]uuid.UUID{"Admin": uuid.New(), "Learner": uuid.New()},
		admin: map[string]bool{"Admin": true},
	}
	app := newTestApp(&config.Config{}, lookup)

	learnerToken, _ := utils.GenerateToken(uuid.New(), "lena", []string{"Learner"}, time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+learnerToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, apperrors.KindAuthorization, decodeError(t, resp).Code)

	adminToken, _ := utils.GenerateToken(uuid.New(), "root", []string{"Learner", "Admin"}, time.Hour)
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestAuthMiddlewareRejectsDisabledUser(t *testing.T) {
	utils.SetSecret("middleware-secret")
	userID := uuid.New()
	lookup := &fakeRoleLookup{
		ids:      map[string]uuid.UUID{"Admin": uuid.New()},
		admin:    map[string]bool{"Admin": true},
		disabled: map[uuid.UUID]bool{userID: true},
	}
	app := newTestApp(&config.Config{}, lookup)
	token, err := utils.GenerateToken(userID, "gone", []string{"Admin"}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, apperrors.KindUnauthenticated, decodeError(t, resp).Code)

	delete(lookup.disabled, userID)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSkipAuthRunsAsAdmin(t *testing.T) {
	app := newTestApp(&config.Config{SkipAuth: true}, &fakeRoleLookup{})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   apperrors.Kind
	}{
		{"validation", apperrors.Validation("invalid request", apperrors.FieldError{Field: "title", Message: "this field is required"}), 400, apperrors.KindValidation},
		{"forbidden", apperrors.Forbidden(apperrors.ReasonInsufficientPermission), 403, apperrors.KindAuthorization},
		{"not found", errors.Wrap(apperrors.NotFound("module", uuid.New()), "load"), 404, apperrors.KindNotFound},
		{"conflict", apperrors.Conflict("attempt already submitted"), 409, apperrors.KindConflict},
		{"attempt limit", apperrors.AttemptLimitExceeded(3), 409, apperrors.KindAttemptLimit},
		{"fiber", fiber.ErrNotFound, 404, apperrors.KindNotFound},
		{"internal", errors.New("connection reset"), 500, apperrors.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(zap.NewNop())})
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decodeError(t, resp)
			assert.Equal(t, tt.kind, body.Code)
			if tt.kind == apperrors.KindInternal {
				assert.Equal(t, "internal server error", body.Error)
			}
			if tt.kind == apperrors.KindValidation {
				require.Len(t, body.Fields, 1)
				assert.Equal(t, "title", body.Fields[0].Field)
			}
		})
	}
}
