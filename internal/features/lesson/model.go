package lesson

import (
	"time"

	"go-lms/internal/features/access"

	"github.com/google/uuid"
)

const (
	ContentText     = "text"
	ContentVideo    = "video"
	ContentDocument = "document"
	ContentLink     = "link"
)

type Lesson struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SectionID       uuid.UUID `json:"section_id" gorm:"type:uuid"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	ContentType     string    `json:"content_type"`
	MediaURL        string    `json:"media_url"`
	DurationMinutes int       `json:"duration_minutes"`
	SortOrder       int       `json:"sort_order"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Lesson) TableName() string { return "lessons" }

type LessonDetail struct {
	Lesson
	ModuleID    uuid.UUID          `json:"module_id"`
	Permissions access.Permissions `json:"permissions"`
}

type CreateLessonRequest struct {
	SectionID       uuid.UUID `json:"section_id" validate:"required"`
	Title           string    `json:"title" validate:"required,max=200"`
	Content         string    `json:"content"`
	ContentType     string    `json:"content_type" validate:"omitempty,oneof=text video document link"`
	MediaURL        string    `json:"media_url" validate:"omitempty,url"`
	DurationMinutes int       `json:"duration_minutes" validate:"min=0"`
	SortOrder       int       `json:"sort_order" validate:"min=0"`
	IsActive        *bool     `json:"is_active"`
}

type UpdateLessonRequest struct {
	Title           *string `json:"title" validate:"omitempty,min=1,max=200"`
	Content         *string `json:"content"`
	ContentType     *string `json:"content_type" validate:"omitempty,oneof=text video document link"`
	MediaURL        *string `json:"media_url" validate:"omitempty,url"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,min=0"`
	SortOrder       *int    `json:"sort_order" validate:"omitempty,min=0"`
	IsActive        *bool   `json:"is_active"`
}
