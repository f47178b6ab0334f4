package module

import (
	"context"

	"go-lms/internal/common/apperrors"
	"go-lms/internal/database"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type ModuleRepository interface {
	Create(ctx context.Context, module *Module) error
	FindByID(ctx context.Context, id uuid.UUID) (*Module, error)
	List(ctx context.Context, filter ModuleFilter) ([]Module, error)
	Update(ctx context.Context, module *Module) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ModuleRepositoryImpl struct {
	db *gorm.DB
}

func NewModuleRepository(db *gorm.DB) ModuleRepository {
	return &ModuleRepositoryImpl{db: db}
}

func (r *ModuleRepositoryImpl) Create(ctx context.Context, module *Module) error {
	if err := r.db.WithContext(ctx).Create(module).Error; err != nil {
		return errors.Wrap(err, "create module")
	}
	return nil
}

func (r *ModuleRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*Module, error) {
	var m Module
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if database.IsRecordNotFound(err) {
			return nil, apperrors.NotFound("module", id)
		}
		return nil, errors.Wrap(err, "find module")
	}
	return &m, nil
}

func (r *ModuleRepositoryImpl) List(ctx context.Context, filter ModuleFilter) ([]Module, error) {
	modules := make([]Module, 0)
	if filter.IDs != nil && len(filter.IDs) == 0 {
		return modules, nil
	}

	q := r.db.WithContext(ctx)
	if filter.IDs != nil {
		q = q.Where("id IN ?", filter.IDs)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if !filter.IncludeInactive {
		q = q.Where("is_active")
	}

	if err := q.Order("sort_order, title").Find(&modules).Error; err != nil {
		return nil, errors.Wrap(err, "list modules")
	}
	return modules, nil
}

func (r *ModuleRepositoryImpl) Update(ctx context.Context, module *Module) error {
	err := r.db.WithContext(ctx).Model(module).
		Select("title", "description", "category", "sort_order", "is_active", "updated_at").
		Updates(module).Error
	if err != nil {
		return errors.Wrap(err, "update module")
	}
	return nil
}

// Delete removes the module. Sections, lessons, assessments, rules and progress cascade.
func (r *ModuleRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Module{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete module")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("module", id)
	}
	return nil
}
