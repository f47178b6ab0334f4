package section

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

type SectionService interface {
	ListSections(ctx context.Context, principal *common_models.Principal, moduleID uuid.UUID) ([]Section, error)
	GetSection(ctx context.Context, principal *common_models.Principal, id uuid.UUID) (*SectionDetail, error)
	CreateSection(ctx context.Context, principal *common_models.Principal, req CreateSectionRequest) (*Section, error)
	UpdateSection(ctx context.Context, principal *common_models.Principal, id uuid.UUID, req UpdateSectionRequest) (*Section, error)
	DeleteSection(ctx context.Context, principal *common_models.Principal, id uuid.UUID) error
}

type SectionServiceImpl struct {
	Repo         SectionRepository
	Resolver     access.Resolver
	AuditService audit.AuditService
	Validator    *validation.Validator
}

func NewSectionService(repo SectionRepository, resolver access.Resolver, auditService audit.AuditService, validator *validation.Validator) SectionService {
	return &SectionServiceImpl{
		Repo:         repo,
		Resolver:     resolver,
		AuditService: auditService,
		Validator:    validator,
	}
}

// ListSections returns the sections of a module the principal may view, each judged on its
// own rules.
func (s *SectionServiceImpl) ListSections(ctx context.Context, principal *common_models.Principal, moduleID uuid.UUID) ([]Section, error) {
	// Resolving the module first reports a missing module as NotFound
	if _, err := s.Resolver.Permissions(ctx, principal, moduleID, nil); err != nil {
		return nil, err
	}

	sections, err := s.Repo.ListByModule(ctx, moduleID, principal.IsAdmin)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(sections))
	for _, sec := range sections {
		ids = append(ids, sec.ID)
	}
	perms, err := s.Resolver.SectionPermissions(ctx, principal, moduleID, ids)
	if err != nil {
		return nil, err
	}

	visible := make([]Section, 0, len(sections))
	for _, sec := range sections {
		if perms[sec.ID].CanView {
			visible = append(visible, sec)
		}
	}
	return visible, nil
}

func (s *SectionServiceImpl) GetSection(ctx context.Context, principal *common_models.Principal, id uuid.UUID) (*SectionDetail, error) {
	sec, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	perms, err := s.Resolver.Permissions(ctx, principal, sec.ModuleID, &sec.ID)
	if err != nil {
		return nil, err
	}
	if !perms.CanView {
		return nil, apperrors.Forbidden(apperrors.ReasonInsufficientPermission)
	}
	if !sec.IsActive && !perms.CanEdit {
		return nil, apperrors.NotFound("section", id)
	}
	return &SectionDetail{Section: *sec, Permissions: perms}, nil
}

func (s *SectionServiceImpl) CreateSection(ctx context.Context, principal *common_models.Principal, req CreateSectionRequest) (*Section, error) {
	if err := access.RequireAdmin(principal); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.Resolver.Permissions(ctx, principal, req.ModuleID, nil); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sec := &Section{
		ID:          uuid.New(),
		ModuleID:    req.ModuleID,
		Title:       req.Title,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		IsActive:    req.IsActive == nil || *req.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, sec); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "section", sec.ID.String(), map[string]common_models.Change{
		"title":     {New: sec.Title},
		"module_id": {New: sec.ModuleID.String()},
	})
	return sec, nil
}

func (s *SectionServiceImpl) UpdateSection(ctx context.Context, principal *common_models.Principal, id uuid.UUID, req UpdateSectionRequest) (*Section, error) {
	sec, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Resolver.Authorize(ctx, principal, access.ActionEdit, sec.ModuleID, &sec.ID); err != nil {
		return nil, err
	}
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		req.Title = &trimmed
	}
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}

	changes := map[string]common_models.Change{}
	if req.Title != nil {
		if t := *req.Title; t != sec.Title {
			changes["title"] = common_models.Change{Old: sec.Title, New: t}
			sec.Title = t
		}
	}
	if req.Description != nil && *req.Description != sec.Description {
		changes["description"] = common_models.Change{Old: sec.Description, New: *req.Description}
		sec.Description = *req.Description
	}
	if req.SortOrder != nil && *req.SortOrder != sec.SortOrder {
		changes["sort_order"] = common_models.Change{Old: sec.SortOrder, New: *req.SortOrder}
		sec.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil && *req.IsActive != sec.IsActive {
		changes["is_active"] = common_models.Change{Old: sec.IsActive, New: *req.IsActive}
		sec.IsActive = *req.IsActive
	}
	sec.UpdatedAt = time.Now().UTC()

	if err := s.Repo.Update(ctx, sec); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "section", id.String(), changes)
	return sec, nil
}

func (s *SectionServiceImpl) DeleteSection(ctx context.Context, principal *common_models.Principal, id uuid.UUID) error {
	sec, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Resolver.Authorize(ctx, principal, access.ActionDelete, sec.ModuleID, &sec.ID); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "section", id.String(), map[string]common_models.Change{
		"title": {Old: sec.Title},
	})
	return nil
}
