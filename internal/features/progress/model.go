package progress

import (
	"time"

	"github.com/google/uuid"
)

type LessonProgress struct {
	UserID         uuid.UUID  `json:"user_id" gorm:"type:uuid;primaryKey"`
	LessonID       uuid.UUID  `json:"lesson_id" gorm:"type:uuid;primaryKey"`
	IsCompleted    bool       `json:"is_completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
}

func (LessonProgress) TableName() string { return "lesson_progress" }

type ModuleProgress struct {
	UserID               uuid.UUID  `json:"user_id" gorm:"type:uuid;primaryKey"`
	ModuleID             uuid.UUID  `json:"module_id" gorm:"type:uuid;primaryKey"`
	CompletionPercentage int        `json:"completion_percentage"`
	CompletedLessons     int        `json:"completed_lessons"`
	TotalLessons         int        `json:"total_lessons"`
	IsCompleted          bool       `json:"is_completed"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (ModuleProgress) TableName() string { return "module_progress" }

// LessonRef locates a lesson in the content hierarchy.
type LessonRef struct {
	LessonID  uuid.UUID
	SectionID uuid.UUID
	ModuleID  uuid.UUID
	IsActive  bool
}

// LearnerProgress is one row of a module progress export.
type LearnerProgress struct {
	ModuleProgress
	Username string `json:"username"`
	Email    string `json:"email"`
}

const EventModuleProgress = "module_progress"

// Event is pushed to the learner's websocket connections whenever their module progress
// is recomputed.
type Event struct {
	Type     string         `json:"type"`
	Progress ModuleProgress `json:"progress"`
}
