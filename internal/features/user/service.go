package user

import (
	"context"
	"strings"
	"time"

	"go-lms/internal/common/apperrors"
	"go-lms/internal/common/models"
	"go-lms/internal/common/validation"
	"go-lms/internal/features/audit"
	"go-lms/pkg/utils"

	"github.com/google/uuid"
)

type UserService interface {
	ListUsers(ctx context.Context, page, limit int) ([]UserView, models.Pagination, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*UserView, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserView, error)
	UpdateUserRoles(ctx context.Context, id uuid.UUID, roleIDs []uuid.UUID) error
	UpdateUserStatus(ctx context.Context, id uuid.UUID, isActive bool) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type UserServiceImpl struct {
	UserRepo     UserRepository
	AuditService audit.AuditService
	Validator    *validation.Validator
}

func NewUserService(userRepo UserRepository, auditService audit.AuditService, validator *validation.Validator) UserService {
	return &UserServiceImpl{
		UserRepo:     userRepo,
		AuditService: auditService,
		Validator:    validator,
	}
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, page, limit int) ([]UserView, models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	p := models.Pagination{Page: page, Limit: limit}

	users, total, err := s.UserRepo.List(ctx, limit, p.Offset())
	if err != nil {
		return nil, p, err
	}
	p.Total = total

	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	names, err := s.UserRepo.RoleNames(ctx, ids)
	if err != nil {
		return nil, p, err
	}

	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, UserView{User: u, Roles: nonNil(names[u.ID])})
	}
	return views, p, nil
}

func (s *UserServiceImpl) GetUserByID(ctx context.Context, id uuid.UUID) (*UserView, error) {
	u, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	names, err := s.UserRepo.RoleNames(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	return &UserView{User: *u, Roles: nonNil(names[id])}, nil
}

func (s *UserServiceImpl) CreateUser(ctx context.Context, req CreateUserRequest) (*UserView, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.UserRepo.Create(ctx, u, req.RoleIDs); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "user", u.ID.String(), map[string]models.Change{
		"username": {New: u.Username},
		"email":    {New: u.Email},
	})

	return s.GetUserByID(ctx, u.ID)
}

func (s *UserServiceImpl) UpdateUserRoles(ctx context.Context, id uuid.UUID, roleIDs []uuid.UUID) error {
	if _, err := s.UserRepo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.UserRepo.ReplaceRoles(ctx, id, roleIDs); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "user", id.String(), map[string]models.Change{
		"roles": {New: roleIDs},
	})
	return nil
}

func (s *UserServiceImpl) UpdateUserStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	if p, ok := models.PrincipalFromContext(ctx); ok && p.UserID == id && !isActive {
		return apperrors.Validation("you cannot deactivate your own account")
	}
	if err := s.UserRepo.UpdateStatus(ctx, id, isActive); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "user", id.String(), map[string]models.Change{
		"is_active": {New: isActive},
	})
	return nil
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.UserRepo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionDelete, "user", id.String(), nil)
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
