package module

import (
	"time"

	"go-lms/internal/features/access"

	"github.com/google/uuid"
)

// Module is a top-level unit of training content.
type Module struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Module) TableName() string { return "modules" }

// ModuleDetail is a module together with the caller's effective permissions on it.
type ModuleDetail struct {
	Module
	Permissions access.Permissions `json:"permissions"`
}

type CreateModuleRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"max=100"`
	SortOrder   int    `json:"sort_order" validate:"min=0"`
	IsActive    *bool  `json:"is_active"`
}

type UpdateModuleRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	SortOrder   *int    `json:"sort_order" validate:"omitempty,min=0"`
	IsActive    *bool   `json:"is_active"`
}

type ModuleFilter struct {
	Category        string
	IncludeInactive bool
	// IDs restricts the result when non-nil.
	IDs []uuid.UUID
}
