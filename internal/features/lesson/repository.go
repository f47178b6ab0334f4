package lesson

import (
	"context"

	"go-lms/internal/common/apperrors"
	"go-lms/internal/database"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type LessonRepository interface {
	Create(ctx context.Context, lesson *Lesson) error
	FindByID(ctx context.Context, id uuid.UUID) (*Lesson, error)
	ListBySection(ctx context.Context, sectionID uuid.UUID, includeInactive bool) ([]Lesson, error)
	Update(ctx context.Context, lesson *Lesson) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type LessonRepositoryImpl struct {
	db *gorm.DB
}

func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &LessonRepositoryImpl{db: db}
}

func (r *LessonRepositoryImpl) Create(ctx context.Context, lesson *Lesson) error {
	if err := r.db.WithContext(ctx).Create(lesson).Error; err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.NotFound("section", lesson.SectionID)
		}
		return errors.Wrap(err, "create lesson")
	}
	return nil
}

func (r *LessonRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*Lesson, error) {
	var l Lesson
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		if database.IsRecordNotFound(err) {
			return nil, apperrors.NotFound("lesson", id)
		}
		return nil, errors.Wrap(err, "find lesson")
	}
	return &l, nil
}

func (r *LessonRepositoryImpl) ListBySection(ctx context.Context, sectionID uuid.UUID, includeInactive bool) ([]Lesson, error) {
	q := r.db.WithContext(ctx).Where("section_id = ?", sectionID)
	if !includeInactive {
		q = q.Where("is_active")
	}
	lessons := make([]Lesson, 0)
	if err := q.Order("sort_order, title").Find(&lessons).Error; err != nil {
		return nil, errors.Wrap(err, "list lessons")
	}
	return lessons, nil
}

func (r *LessonRepositoryImpl) Update(ctx context.Context, lesson *Lesson) error {
	err := r.db.WithContext(ctx).Model(lesson).
		Select("title", "content", "content_type", "media_url", "duration_minutes", "sort_order", "is_active", "updated_at").
		Updates(lesson).Error
	if err != nil {
		return errors.Wrap(err, "update lesson")
	}
	return nil
}

func (r *LessonRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Lesson{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete lesson")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("lesson", id)
	}
	return nil
}
