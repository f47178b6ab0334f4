package auth

import (
	"context"
	"strings"
	"time"

	"go-lms/internal/common/apperrors"
	"go-lms/internal/common/models"
	"go-lms/internal/common/validation"
	"go-lms/internal/config"
	"go-lms/internal/features/audit"
	"go-lms/internal/features/role"
	"go-lms/internal/features/user"
	"go-lms/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*user.UserView, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Me(ctx context.Context, principal *models.Principal) (*user.UserView, error)
}

type AuthServiceImpl struct {
	UserRepo     user.UserRepository
	RoleRepo     role.RoleRepository
	AuditService audit.AuditService
	Validator    *validation.Validator
	Config       *config.Config
	Logger       *zap.Logger
}

func NewAuthService(
	userRepo user.UserRepository,
	roleRepo role.RoleRepository,
	auditService audit.AuditService,
	validator *validation.Validator,
	cfg *config.Config,
	logger *zap.Logger,
) AuthService {
	return &AuthServiceImpl{
		UserRepo:     userRepo,
		RoleRepo:     roleRepo,
		AuditService: auditService,
		Validator:    validator,
		Config:       cfg,
		Logger:       logger,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, req RegisterRequest) (*user.UserView, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	var roleIDs []uuid.UUID
	roleNames := []string{}
	defaultRole, err := s.RoleRepo.FindByName(ctx, DefaultRoleName)
	switch {
	case err == nil:
		roleIDs = append(roleIDs, defaultRole.ID)
		roleNames = append(roleNames, defaultRole.Name)
	case apperrors.IsNotFound(err):
		s.Logger.Warn("Default role missing, registering user without roles", zap.String("role", DefaultRoleName))
	default:
		return nil, err
	}

	now := time.Now().UTC()
	newUser := user.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.UserRepo.Create(ctx, &newUser, roleIDs); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "user", newUser.ID.String(), map[string]models.Change{
		"username": {New: newUser.Username},
		"email":    {New: newUser.Email},
	})

	return &user.UserView{User: newUser, Roles: roleNames}, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}

	usr, err := s.UserRepo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthenticated("Invalid credentials")
		}
		return nil, err
	}

	if !utils.CheckPassword(usr.PasswordHash, req.Password) {
		return nil, apperrors.Unauthenticated("Invalid credentials")
	}
	if !usr.IsActive {
		return nil, apperrors.Unauthenticated("Account is disabled")
	}

	names, err := s.UserRepo.RoleNames(ctx, []uuid.UUID{usr.ID})
	if err != nil {
		return nil, err
	}
	roles := names[usr.ID]
	if roles == nil {
		roles = []string{}
	}

	token, err := utils.GenerateToken(usr.ID, usr.Username, roles, s.Config.JWTTTL)
	if err != nil {
		return nil, err
	}

	if err := s.UserRepo.TouchLogin(ctx, usr.ID); err != nil {
		s.Logger.Warn("Failed to record last login", zap.String("user_id", usr.ID.String()), zap.Error(err))
	}

	actorCtx := models.WithPrincipal(ctx, &models.Principal{UserID: usr.ID, Username: usr.Username, RoleNames: roles})
	_ = s.AuditService.LogChange(actorCtx, models.AuditActionLogin, "user", usr.ID.String(), nil)

	return &AuthResponse{
		Token: token,
		User:  &user.UserView{User: *usr, Roles: roles},
	}, nil
}

func (s *AuthServiceImpl) Me(ctx context.Context, principal *models.Principal) (*user.UserView, error) {
	usr, err := s.UserRepo.FindByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	names, err := s.UserRepo.RoleNames(ctx, []uuid.UUID{usr.ID})
	if err != nil {
		return nil, err
	}
	roles := names[usr.ID]
	if roles == nil {
		roles = []string{}
	}
	return &user.UserView{User: *usr, Roles: roles}, nil
}
