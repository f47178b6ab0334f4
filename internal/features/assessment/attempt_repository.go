package assessment

import (
	"context"
	"time"

	"go-lms/internal/common/apperrors"
	"go-lms/internal/database"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	Create(ctx context.Context, attempt *Attempt) error
	FindByID(ctx context.Context, id uuid.UUID) (*Attempt, error)
	// FindOpen returns the user's in-progress attempt, or nil when there is none.
	FindOpen(ctx context.Context, assessmentID, userID uuid.UUID) (*Attempt, error)
	CountByUser(ctx context.Context, assessmentID, userID uuid.UUID) (int, error)
	// List returns attempts on the assessment, only the user's when userID is set.
	List(ctx context.Context, assessmentID uuid.UUID, userID *uuid.UUID) ([]Attempt, error)
	// Finish moves an in-progress attempt to a terminal state. It fails with a conflict when
	// the attempt was already finished.
	Finish(ctx context.Context, attempt *Attempt) error
	// ListStale returns in-progress attempts past their time limit at now, and untimed ones
	// started before idleBefore.
	ListStale(ctx context.Context, now, idleBefore time.Time) ([]Attempt, error)
}

type AttemptRepositoryImpl struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &AttemptRepositoryImpl{db: db}
}

func (r *AttemptRepositoryImpl) Create(ctx context.Context, attempt *Attempt) error {
	if err := r.db.WithContext(ctx).Create(attempt).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("another attempt was started concurrently")
		}
		return errors.Wrap(err, "create attempt")
	}
	return nil
}

func (r *AttemptRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*Attempt, error) {
	var a Attempt
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if database.IsRecordNotFound(err) {
			return nil, apperrors.NotFound("attempt", id)
		}
		return nil, errors.Wrap(err, "find attempt")
	}
	return &a, nil
}

func (r *AttemptRepositoryImpl) FindOpen(ctx context.Context, assessmentID, userID uuid.UUID) (*Attempt, error) {
	var a Attempt
	err := r.db.WithContext(ctx).
		Where("assessment_id = ? AND user_id = ? AND status = ?", assessmentID, userID, AttemptInProgress).
		Order("attempt_number DESC").
		First(&a).Error
	if err != nil {
		if database.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find open attempt")
	}
	return &a, nil
}

func (r *AttemptRepositoryImpl) CountByUser(ctx context.Context, assessmentID, userID uuid.UUID) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Attempt{}).
		Where("assessment_id = ? AND user_id = ?", assessmentID, userID).
		Count(&n).Error
	if err != nil {
		return 0, errors.Wrap(err, "count attempts")
	}
	return int(n), nil
}

func (r *AttemptRepositoryImpl) List(ctx context.Context, assessmentID uuid.UUID, userID *uuid.UUID) ([]Attempt, error) {
	q := r.db.WithContext(ctx).Where("assessment_id = ?", assessmentID)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	out := make([]Attempt, 0)
	if err := q.Order("user_id, attempt_number").Find(&out).Error; err != nil {
		return nil, errors.Wrap(err, "list attempts")
	}
	return out, nil
}

func (r *AttemptRepositoryImpl) Finish(ctx context.Context, attempt *Attempt) error {
	res := r.db.WithContext(ctx).Model(&Attempt{}).
		Where("id = ? AND status = ?", attempt.ID, AttemptInProgress).
		Updates(map[string]interface{}{
			"status":          attempt.Status,
			"submitted_at":    attempt.SubmittedAt,
			"points_earned":   attempt.PointsEarned,
			"points_possible": attempt.PointsPossible,
			"points_pending":  attempt.PointsPending,
			"percentage":      attempt.Percentage,
			"passed":          attempt.Passed,
			"answers":         attempt.Answers,
			"updated_at":      attempt.UpdatedAt,
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "finish attempt")
	}
	if res.RowsAffected == 0 {
		return apperrors.Conflict("attempt is no longer in progress")
	}
	return nil
}

func (r *AttemptRepositoryImpl) ListStale(ctx context.Context, now, idleBefore time.Time) ([]Attempt, error) {
	out := make([]Attempt, 0)
	err := r.db.WithContext(ctx).
		Table("assessment_attempts AS t").
		Select("t.*").
		Joins("JOIN assessments a ON a.id = t.assessment_id").
		Where("t.status = ?", AttemptInProgress).
		Where(r.db.
			Where("a.time_limit_minutes > 0 AND t.started_at + a.time_limit_minutes * INTERVAL '1 minute' < ?", now).
			Or("a.time_limit_minutes = 0 AND t.started_at < ?", idleBefore)).
		Find(&out).Error
	if err != nil {
		return nil, errors.Wrap(err, "list stale attempts")
	}
	return out, nil
}
