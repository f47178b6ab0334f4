package role

import (
	"context"
	"strings"
	"time"

	common_models "go-lms/internal/common/models"
	"go-lms/internal/common/validation"
	"go-lms/internal/features/audit"

	"github.com/google/uuid"
)

type RoleService interface {
	CreateRole(ctx context.Context, req CreateRoleRequest) (*Role, error)
	GetRoleByID(ctx context.Context, id uuid.UUID) (*Role, error)
	GetRoleByName(ctx context.Context, name string) (*Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
	UpdateRole(ctx context.Context, id uuid.UUID, req UpdateRoleRequest) (*Role, error)
	DeleteRole(ctx context.Context, id uuid.UUID) error
	LookupRoles(ctx context.Context, names []string) ([]uuid.UUID, bool, error)
	UserActive(ctx context.Context, userID uuid.UUID) (bool, error)
}

type RoleServiceImpl struct {
	RoleRepo     RoleRepository
	AuditService audit.AuditService
	Validator    *validation.Validator
}

func NewRoleService(roleRepo RoleRepository, auditService audit.AuditService, validator *validation.Validator) RoleService {
	return &RoleServiceImpl{
		RoleRepo:     roleRepo,
		AuditService: auditService,
		Validator:    validator,
	}
}

func (s *RoleServiceImpl) CreateRole(ctx context.Context, req CreateRoleRequest) (*Role, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	role := &Role{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		IsAdmin:     req.IsAdmin,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.RoleRepo.Create(ctx, role); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "role", role.ID.String(), map[string]common_models.Change{
		"name":     {New: role.Name},
		"is_admin": {New: role.IsAdmin},
	})

	return role, nil
}

func (s *RoleServiceImpl) GetRoleByID(ctx context.Context, id uuid.UUID) (*Role, error) {
	return s.RoleRepo.FindByID(ctx, id)
}

func (s *RoleServiceImpl) GetRoleByName(ctx context.Context, name string) (*Role, error) {
	return s.RoleRepo.FindByName(ctx, name)
}

func (s *RoleServiceImpl) ListRoles(ctx context.Context) ([]Role, error) {
	return s.RoleRepo.List(ctx)
}

func (s *RoleServiceImpl) UpdateRole(ctx context.Context, id uuid.UUID, req UpdateRoleRequest) (*Role, error) {
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}

	role, err := s.RoleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]common_models.Change{}
	if req.Name != nil {
		if name := strings.TrimSpace(*req.Name); name != role.Name {
			changes["name"] = common_models.Change{Old: role.Name, New: name}
			role.Name = name
		}
	}
	if req.Description != nil && *req.Description != role.Description {
		changes["description"] = common_models.Change{Old: role.Description, New: *req.Description}
		role.Description = *req.Description
	}
	if req.IsAdmin != nil && *req.IsAdmin != role.IsAdmin {
		changes["is_admin"] = common_models.Change{Old: role.IsAdmin, New: *req.IsAdmin}
		role.IsAdmin = *req.IsAdmin
	}
	role.UpdatedAt = time.Now().UTC()

	if err := s.RoleRepo.Update(ctx, role); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "role", id.String(), changes)

	return role, nil
}

func (s *RoleServiceImpl) DeleteRole(ctx context.Context, id uuid.UUID) error {
	role, err := s.RoleRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.RoleRepo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "role", id.String(), map[string]common_models.Change{
		"name": {Old: role.Name},
	})

	return nil
}

// LookupRoles maps token role names to IDs. Unknown names are ignored so a role deleted after
// the token was issued simply grants nothing.
func (s *RoleServiceImpl) UserActive(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.RoleRepo.UserActive(ctx, userID)
}

func (s *RoleServiceImpl) LookupRoles(ctx context.Context, names []string) ([]uuid.UUID, bool, error) {
	roles, err := s.RoleRepo.FindByNames(ctx, names)
	if err != nil {
		return nil, false, err
	}

	ids := make([]uuid.UUID, 0, len(roles))
	isAdmin := false
	for _, r := range roles {
		ids = append(ids, r.ID)
		if r.IsAdmin {
			isAdmin = true
		}
	}
	return ids, isAdmin, nil
}
