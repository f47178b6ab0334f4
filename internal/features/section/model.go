package section

import (
	"time"

	"go-lms/internal/features/access"

	"github.com/google/uuid"
)

// Section belongs to exactly one module and holds lessons.
type Section struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ModuleID    uuid.UUID `json:"module_id" gorm:"type:uuid"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Section) TableName() string { return "sections" }

type SectionDetail struct {
	Section
	Permissions access.Permissions `json:"permissions"`
}

type CreateSectionRequest struct {
	ModuleID    uuid.UUID `json:"module_id" validate:"required"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sort_order" validate:"min=0"`
	IsActive    *bool     `json:"is_active"`
}

type UpdateSectionRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sort_order" validate:"omitempty,min=0"`
	IsActive    *bool   `json:"is_active"`
}
