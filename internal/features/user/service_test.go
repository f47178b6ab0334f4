package user

import (
	"context"
	"testing"

	"go-lms/internal/common/apperrors"
	"go-lms/internal/common/models"
	"go-lms/internal/common/validation"
	"go-lms/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockUserRepo struct {
	users map[uuid.UUID]*User
	roles map[uuid.UUID][]uuid.UUID
	names map[uuid.UUID]string
}

func newMockUserRepo() *MockUserRepo {
	return &MockUserRepo{users: map[uuid.UUID]*User{}, roles: map[uuid.UUID][]uuid.UUID{}, names: map[uuid.UUID]string{}}
}

func (m *MockUserRepo) Create(ctx context.Context, u *User, roleIDs []uuid.UUID) error {
	m.users[u.ID] = u
	m.roles[u.ID] = roleIDs
	return nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.NotFound("user", id)
}

func (m *MockUserRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user", nil)
}

func (m *MockUserRepo) List(ctx context.Context, limit, offset int) ([]User, int64, error) {
	var out []User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (m *MockUserRepo) RoleNames(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	out := map[uuid.UUID][]string{}
	for _, id := range userIDs {
		for _, rid := range m.roles[id] {
			out[id] = append(out[id], m.names[rid])
		}
	}
	return out, nil
}

func (m *MockUserRepo) ReplaceRoles(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) error {
	m.roles[userID] = roleIDs
	return nil
}

func (m *MockUserRepo) UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	u, err := m.FindByID(ctx, id)
	if err != nil {
		return err
	}
	u.IsActive = isActive
	return nil
}

func (m *MockUserRepo) TouchLogin(ctx context.Context, id uuid.UUID) error { return nil }

func (m *MockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.users, id)
	return nil
}

type nopAudit struct{}

func (nopAudit) LogChange(ctx context.Context, action models.AuditAction, entity string, recordID string, changes map[string]models.Change) error {
	return nil
}

func (nopAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]models.AuditLog, error) {
	return nil, nil
}

func TestCreateUserHashesPasswordAndReturnsRoles(t *testing.T) {
	repo := newMockUserRepo()
	learner := uuid.New()
	repo.names[learner] = "Learner"
	svc := NewUserService(repo, nopAudit{}, validation.NewValidator())

	view, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "lena",
		Email:    "Lena@Example.com",
		Password: "correct-horse",
		RoleIDs:  []uuid.UUID{learner},
	})
	require.NoError(t, err)
	assert.Equal(t, "lena@example.com", view.Email)
	assert.Equal(t, []string{"Learner"}, view.Roles)
	assert.True(t, utils.CheckPassword(repo.users[view.ID].PasswordHash, "correct-horse"))
}

func TestCreateUserRejectsInvalidInput(t *testing.T) {
	svc := NewUserService(newMockUserRepo(), nopAudit{}, validation.NewValidator())

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{Username: "x", Email: "nope", Password: "short"})
	require.Error(t, err)
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Fields, 3)
}

func TestUpdateUserStatusRefusesSelfDeactivation(t *testing.T) {
	repo := newMockUserRepo()
	me := &User{ID: uuid.New(), Username: "root", IsActive: true}
	repo.users[me.ID] = me
	svc := NewUserService(repo, nopAudit{}, validation.NewValidator())

	ctx := models.WithPrincipal(context.Background(), &models.Principal{UserID: me.ID, IsAdmin: true})
	err := svc.UpdateUserStatus(ctx, me.ID, false)
	assert.True(t, apperrors.IsValidation(err))
	assert.True(t, me.IsActive)
}
