package progress

import (
	"context"
	"time"

	"go-lms/internal/common/apperrors"
	"go-lms/internal/database"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository interface {
	LessonTarget(ctx context.Context, lessonID uuid.UUID) (*LessonRef, error)
	ModuleTitle(ctx context.Context, moduleID uuid.UUID) (string, error)
	TouchLesson(ctx context.Context, userID, lessonID uuid.UUID, at time.Time) error
	// CompleteLesson marks the lesson completed. A lesson completed earlier keeps its
	// original completion time.
	CompleteLesson(ctx context.Context, userID, lessonID uuid.UUID, at time.Time) error
	// LessonCounts counts the active lessons of the module and how many of them the user completed.
	LessonCounts(ctx context.Context, userID, moduleID uuid.UUID) (completed, total int, err error)
	// RequiredAssessmentsPassed reports whether every active required assessment of the
	// module has a passing completed attempt by the user.
	RequiredAssessmentsPassed(ctx context.Context, userID, moduleID uuid.UUID) (bool, error)
	FindModuleProgress(ctx context.Context, userID, moduleID uuid.UUID) (*ModuleProgress, error)
	SaveModuleProgress(ctx context.Context, mp *ModuleProgress) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]ModuleProgress, error)
	ListByModule(ctx context.Context, moduleID uuid.UUID) ([]LearnerProgress, error)
}

type ProgressRepositoryImpl struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &ProgressRepositoryImpl{db: db}
}

func (r *ProgressRepositoryImpl) LessonTarget(ctx context.Context, lessonID uuid.UUID) (*LessonRef, error) {
	var ref LessonRef
	res := r.db.WithContext(ctx).
		Table("lessons l").
		Select("l.id AS lesson_id, l.section_id, s.module_id, l.is_active").
		Joins("JOIN sections s ON s.id = l.section_id").
		Where("l.id = ?", lessonID).
		Limit(1).
		Scan(&ref)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "find lesson target")
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NotFound("lesson", lessonID)
	}
	return &ref, nil
}

func (r *ProgressRepositoryImpl) ModuleTitle(ctx context.Context, moduleID uuid.UUID) (string, error) {
	var titles []string
	err := r.db.WithContext(ctx).Table("modules").Where("id = ?", moduleID).Pluck("title", &titles).Error
	if err != nil {
		return "", errors.Wrap(err, "find module title")
	}
	if len(titles) == 0 {
		return "", apperrors.NotFound("module", moduleID)
	}
	return titles[0], nil
}

func (r *ProgressRepositoryImpl) TouchLesson(ctx context.Context, userID, lessonID uuid.UUID, at time.Time) error {
	lp := LessonProgress{UserID: userID, LessonID: lessonID, LastAccessedAt: at}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_accessed_at"}),
	}).Create(&lp).Error
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.NotFound("lesson", lessonID)
		}
		return errors.Wrap(err, "touch lesson")
	}
	return nil
}

func (r *ProgressRepositoryImpl) CompleteLesson(ctx context.Context, userID, lessonID uuid.UUID, at time.Time) error {
	lp := LessonProgress{UserID: userID, LessonID: lessonID, IsCompleted: true, CompletedAt: &at, LastAccessedAt: at}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"is_completed":     true,
			"completed_at":     gorm.Expr("COALESCE(lesson_progress.completed_at, EXCLUDED.completed_at)"),
			"last_accessed_at": gorm.Expr("EXCLUDED.last_accessed_at"),
		}),
	}).Create(&lp).Error
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.NotFound("lesson", lessonID)
		}
		return errors.Wrap(err, "complete lesson")
	}
	return nil
}

func (r *ProgressRepositoryImpl) LessonCounts(ctx context.Context, userID, moduleID uuid.UUID) (int, int, error) {
	var counts struct {
		Completed int
		Total     int
	}
	err := r.db.WithContext(ctx).
		Table("lessons l").
		Select("COUNT(*) AS total, COUNT(lp.user_id) AS completed").
		Joins("JOIN sections s ON s.id = l.section_id").
		Joins("LEFT JOIN lesson_progress lp ON lp.lesson_id = l.id AND lp.user_id = ? AND lp.is_completed", userID).
		Where("s.module_id = ? AND l.is_active", moduleID).
		Scan(&counts).Error
	if err != nil {
		return 0, 0, errors.Wrap(err, "count lessons")
	}
	return counts.Completed, counts.Total, nil
}

func (r *ProgressRepositoryImpl) RequiredAssessmentsPassed(ctx context.Context, userID, moduleID uuid.UUID) (bool, error) {
	var missing int64
	err := r.db.WithContext(ctx).
		Table("assessments a").
		Where("a.module_id = ? AND a.is_required AND a.is_active", moduleID).
		Where("NOT EXISTS (?)", r.db.
			Table("assessment_attempts t").
			Select("1").
			Where("t.assessment_id = a.id AND t.user_id = ? AND t.status = ? AND t.passed", userID, "completed")).
		Count(&missing).Error
	if err != nil {
		return false, errors.Wrap(err, "check required assessments")
	}
	return missing == 0, nil
}

func (r *ProgressRepositoryImpl) FindModuleProgress(ctx context.Context, userID, moduleID uuid.UUID) (*ModuleProgress, error) {
	var mp ModuleProgress
	err := r.db.WithContext(ctx).First(&mp, "user_id = ? AND module_id = ?", userID, moduleID).Error
	if err != nil {
		if database.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find module progress")
	}
	return &mp, nil
}

func (r *ProgressRepositoryImpl) SaveModuleProgress(ctx context.Context, mp *ModuleProgress) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "module_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"completion_percentage", "completed_lessons", "total_lessons", "is_completed", "completed_at", "updated_at",
		}),
	}).Create(mp).Error
	if err != nil {
		return errors.Wrap(err, "save module progress")
	}
	return nil
}

func (r *ProgressRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]ModuleProgress, error) {
	out := make([]ModuleProgress, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, errors.Wrap(err, "list progress")
	}
	return out, nil
}

func (r *ProgressRepositoryImpl) ListByModule(ctx context.Context, moduleID uuid.UUID) ([]LearnerProgress, error) {
	out := make([]LearnerProgress, 0)
	err := r.db.WithContext(ctx).
		Table("module_progress mp").
		Select("mp.*, u.username, u.email").
		Joins("JOIN users u ON u.id = mp.user_id").
		Where("mp.module_id = ?", moduleID).
		Order("u.username").
		Scan(&out).Error
	if err != nil {
		return nil, errors.Wrap(err, "list module progress")
	}
	return out, nil
}
