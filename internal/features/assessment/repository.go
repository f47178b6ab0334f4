package assessment

import (
	"context"

	"go-lms/internal/common/apperrors"
	"go-lms/internal/database"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type AssessmentRepository interface {
	Create(ctx context.Context, a *Assessment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Assessment, error)
	ListByModule(ctx context.Context, moduleID uuid.UUID) ([]Assessment, error)
	Update(ctx context.Context, a *Assessment) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateQuestion(ctx context.Context, q *Question) error
	FindQuestion(ctx context.Context, id uuid.UUID) (*Question, error)
	ListQuestions(ctx context.Context, assessmentID uuid.UUID) ([]Question, error)
	UpdateQuestion(ctx context.Context, q *Question) error
	DeleteQuestion(ctx context.Context, id uuid.UUID) error
}

type AssessmentRepositoryImpl struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &AssessmentRepositoryImpl{db: db}
}

func (r *AssessmentRepositoryImpl) Create(ctx context.Context, a *Assessment) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.NotFound("module", a.ModuleID)
		}
		return errors.Wrap(err, "create assessment")
	}
	return nil
}

func (r *AssessmentRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	var a Assessment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if database.IsRecordNotFound(err) {
			return nil, apperrors.NotFound("assessment", id)
		}
		return nil, errors.Wrap(err, "find assessment")
	}
	return &a, nil
}

func (r *AssessmentRepositoryImpl) ListByModule(ctx context.Context, moduleID uuid.UUID) ([]Assessment, error) {
	out := make([]Assessment, 0)
	err := r.db.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Order("created_at").
		Find(&out).Error
	if err != nil {
		return nil, errors.Wrap(err, "list assessments")
	}
	return out, nil
}

func (r *AssessmentRepositoryImpl) Update(ctx context.Context, a *Assessment) error {
	err := r.db.WithContext(ctx).Model(a).
		Select("title", "description", "passing_score", "time_limit_minutes", "max_attempts", "is_required", "is_active", "updated_at").
		Updates(a).Error
	if err != nil {
		return errors.Wrap(err, "update assessment")
	}
	return nil
}

func (r *AssessmentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Assessment{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete assessment")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("assessment", id)
	}
	return nil
}

func (r *AssessmentRepositoryImpl) CreateQuestion(ctx context.Context, q *Question) error {
	if err := r.db.WithContext(ctx).Create(q).Error; err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.NotFound("assessment", q.AssessmentID)
		}
		return errors.Wrap(err, "create question")
	}
	return nil
}

func (r *AssessmentRepositoryImpl) FindQuestion(ctx context.Context, id uuid.UUID) (*Question, error) {
	var q Question
	if err := r.db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		if database.IsRecordNotFound(err) {
			return nil, apperrors.NotFound("question", id)
		}
		return nil, errors.Wrap(err, "find question")
	}
	return &q, nil
}

func (r *AssessmentRepositoryImpl) ListQuestions(ctx context.Context, assessmentID uuid.UUID) ([]Question, error) {
	out := make([]Question, 0)
	err := r.db.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Order("sort_order, created_at").
		Find(&out).Error
	if err != nil {
		return nil, errors.Wrap(err, "list questions")
	}
	return out, nil
}

func (r *AssessmentRepositoryImpl) UpdateQuestion(ctx context.Context, q *Question) error {
	err := r.db.WithContext(ctx).Model(q).
		Select("text", "points", "sort_order", "options", "explanation", "updated_at").
		Updates(q).Error
	if err != nil {
		return errors.Wrap(err, "update question")
	}
	return nil
}

func (r *AssessmentRepositoryImpl) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Question{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete question")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("question", id)
	}
	return nil
}
