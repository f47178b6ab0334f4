package section

import (
	"context"

	"go-lms/internal/common/apperrors"
	"go-lms/internal/database"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type SectionRepository interface {
	Create(ctx context.Context, section *Section) error
	FindByID(ctx context.Context, id uuid.UUID) (*Section, error)
	ListByModule(ctx context.Context, moduleID uuid.UUID, includeInactive bool) ([]Section, error)
	Update(ctx context.Context, section *Section) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SectionRepositoryImpl struct {
	db *gorm.DB
}

func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &SectionRepositoryImpl{db: db}
}

func (r *SectionRepositoryImpl) Create(ctx context.Context, section *Section) error {
	if err := r.db.WithContext(ctx).Create(section).Error; err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.NotFound("module", section.ModuleID)
		}
		return errors.Wrap(err, "create section")
	}
	return nil
}

func (r *SectionRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*Section, error) {
	var s Section
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if database.IsRecordNotFound(err) {
			return nil, apperrors.NotFound("section", id)
		}
		return nil, errors.Wrap(err, "find section")
	}
	return &s, nil
}

func (r *SectionRepositoryImpl) ListByModule(ctx context.Context, moduleID uuid.UUID, includeInactive bool) ([]Section, error) {
	q := r.db.WithContext(ctx).Where("module_id = ?", moduleID)
	if !includeInactive {
		q = q.Where("is_active")
	}
	sections := make([]Section, 0)
	if err := q.Order("sort_order, title").Find(&sections).Error; err != nil {
		return nil, errors.Wrap(err, "list sections")
	}
	return sections, nil
}

func (r *SectionRepositoryImpl) Update(ctx context.Context, section *Section) error {
	err := r.db.WithContext(ctx).Model(section).
		Select("title", "description", "sort_order", "is_active", "updated_at").
		Updates(section).Error
	if err != nil {
		return errors.Wrap(err, "update section")
	}
	return nil
}

// Delete removes the section with its lessons, section-level rules and assessments.
func (r *SectionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Section{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete section")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("section", id)
	}
	return nil
}
