package access

import (
	"context"

	"go-lms/internal/common/apperrors"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// HierarchyRepository answers the structural questions rule validation and resolution need
// about roles, modules and sections without depending on the content packages.
type HierarchyRepository interface {
	ModuleExists(ctx context.Context, moduleID uuid.UUID) (bool, error)
	// SectionModuleID returns the module owning the section, or a NotFoundError.
	SectionModuleID(ctx context.Context, sectionID uuid.UUID) (uuid.UUID, error)
	RoleExists(ctx context.Context, roleID uuid.UUID) (bool, error)
	ListRoles(ctx context.Context) ([]RoleRef, error)
	ListModuleIDs(ctx context.Context) ([]uuid.UUID, error)
}

type HierarchyRepositoryImpl struct {
	db *gorm.DB
}

func NewHierarchyRepository(db *gorm.DB) HierarchyRepository {
	return &HierarchyRepositoryImpl{db: db}
}

func (r *HierarchyRepositoryImpl) exists(ctx context.Context, table string, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Table(table).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, errors.Wrapf(err, "lookup %s", table)
	}
	return count > 0, nil
}

func (r *HierarchyRepositoryImpl) ModuleExists(ctx context.Context, moduleID uuid.UUID) (bool, error) {
	return r.exists(ctx, "modules", moduleID)
}

func (r *HierarchyRepositoryImpl) RoleExists(ctx context.Context, roleID uuid.UUID) (bool, error) {
	return r.exists(ctx, "roles", roleID)
}

func (r *HierarchyRepositoryImpl) SectionModuleID(ctx context.Context, sectionID uuid.UUID) (uuid.UUID, error) {
	var moduleIDs []uuid.UUID
	err := r.db.WithContext(ctx).Table("sections").Where("id = ?", sectionID).Limit(1).Pluck("module_id", &moduleIDs).Error
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "lookup section")
	}
	if len(moduleIDs) == 0 {
		return uuid.Nil, apperrors.NotFound("section", sectionID)
	}
	return moduleIDs[0], nil
}

func (r *HierarchyRepositoryImpl) ListRoles(ctx context.Context) ([]RoleRef, error) {
	roles := make([]RoleRef, 0)
	if err := r.db.WithContext(ctx).Table("roles").Select("id, name, is_admin").Order("name").Scan(&roles).Error; err != nil {
		return nil, errors.Wrap(err, "list roles")
	}
	return roles, nil
}

func (r *HierarchyRepositoryImpl) ListModuleIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	if err := r.db.WithContext(ctx).Table("modules").Order("sort_order, title").Pluck("id", &ids).Error; err != nil {
		return nil, errors.Wrap(err, "list modules")
	}
	return ids, nil
}
