package module

import (
	"context"
	"strings"
	"time"

	"go-lms/internal/common/apperrors"
	common_models "go-lms/internal/common/models"
	"go-lms/internal/common/validation"
	"go-lms/internal/features/access"
	"go-lms/internal/features/audit"

	"github.com/google/uuid"
)

type ModuleService interface {
	ListModules(ctx context.Context, principal *common_models.Principal, filter ModuleFilter) ([]Module, error)
	GetModule(ctx context.Context, principal *common_models.Principal, id uuid.UUID) (*ModuleDetail, error)
	CreateModule(ctx context.Context, principal *common_models.Principal, req CreateModuleRequest) (*Module, error)
	UpdateModule(ctx context.Context, principal *common_models.Principal, id uuid.UUID, req UpdateModuleRequest) (*Module, error)
	DeleteModule(ctx context.Context, principal *common_models.Principal, id uuid.UUID) error
}

type ModuleServiceImpl struct {
	Repo         ModuleRepository
	Resolver     access.Resolver
	AuditService audit.AuditService
	Validator    *validation.Validator
}

func NewModuleService(repo ModuleRepository, resolver access.Resolver, auditService audit.AuditService, validator *validation.Validator) ModuleService {
	return &ModuleServiceImpl{
		Repo:         repo,
		Resolver:     resolver,
		AuditService: auditService,
		Validator:    validator,
	}
}

// ListModules returns the modules the principal may view. Inactive modules are listed for
// administrators only.
func (s *ModuleServiceImpl) ListModules(ctx context.Context, principal *common_models.Principal, filter ModuleFilter) ([]Module, error) {
	viewable, err := s.Resolver.ViewableModules(ctx, principal)
	if err != nil {
		return nil, err
	}
	if !viewable.All() {
		filter.IDs = viewable.IDs()
		filter.IncludeInactive = false
	}
	return s.Repo.List(ctx, filter)
}

// GetModule is allowed to anyone who can list the module, which includes principals whose
// only view grant is on one of its sections. Inactive modules are visible to editors only.
func (s *ModuleServiceImpl) GetModule(ctx context.Context, principal *common_models.Principal, id uuid.UUID) (*ModuleDetail, error) {
	m, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	perms, err := s.Resolver.Permissions(ctx, principal, id, nil)
	if err != nil {
		return nil, err
	}
	if !perms.CanView {
		viewable, err := s.Resolver.ViewableModules(ctx, principal)
		if err != nil {
			return nil, err
		}
		if !viewable.Contains(id) {
			return nil, apperrors.Forbidden(apperrors.ReasonInsufficientPermission)
		}
	}
	if !m.IsActive && !perms.CanEdit {
		return nil, apperrors.NotFound("module", id)
	}

	return &ModuleDetail{Module: *m, Permissions: perms}, nil
}

func (s *ModuleServiceImpl) CreateModule(ctx context.Context, principal *common_models.Principal, req CreateModuleRequest) (*Module, error) {
	if err := access.RequireAdmin(principal); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	m := &Module{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		SortOrder:   req.SortOrder,
		IsActive:    req.IsActive == nil || *req.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, m); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "module", m.ID.String(), map[string]common_models.Change{
		"title": {New: m.Title},
	})
	return m, nil
}

func (s *ModuleServiceImpl) UpdateModule(ctx context.Context, principal *common_models.Principal, id uuid.UUID, req UpdateModuleRequest) (*Module, error) {
	if err := s.Resolver.Authorize(ctx, principal, access.ActionEdit, id, nil); err != nil {
		return nil, err
	}
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		req.Title = &trimmed
	}
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}

	m, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]common_models.Change{}
	if req.Title != nil {
		if t := *req.Title; t != m.Title {
			changes["title"] = common_models.Change{Old: m.Title, New: t}
			m.Title = t
		}
	}
	if req.Description != nil && *req.Description != m.Description {
		changes["description"] = common_models.Change{Old: m.Description, New: *req.Description}
		m.Description = *req.Description
	}
	if req.Category != nil && *req.Category != m.Category {
		changes["category"] = common_models.Change{Old: m.Category, New: *req.Category}
		m.Category = *req.Category
	}
	if req.SortOrder != nil && *req.SortOrder != m.SortOrder {
		changes["sort_order"] = common_models.Change{Old: m.SortOrder, New: *req.SortOrder}
		m.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil && *req.IsActive != m.IsActive {
		changes["is_active"] = common_models.Change{Old: m.IsActive, New: *req.IsActive}
		m.IsActive = *req.IsActive
	}
	m.UpdatedAt = time.Now().UTC()

	if err := s.Repo.Update(ctx, m); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "module", id.String(), changes)
	return m, nil
}

func (s *ModuleServiceImpl) DeleteModule(ctx context.Context, principal *common_models.Principal, id uuid.UUID) error {
	if err := s.Resolver.Authorize(ctx, principal, access.ActionDelete, id, nil); err != nil {
		return err
	}
	m, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "module", id.String(), map[string]common_models.Change{
		"title": {Old: m.Title},
	})
	return nil
}
