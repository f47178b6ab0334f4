package access

import (
	"time"

	"github.com/google/uuid"
)

// AccessRule grants a role view/edit/delete on a whole module (SectionID nil) or on a single
// section of it.
type AccessRule struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	RoleID    uuid.UUID  `json:"role_id" gorm:"type:uuid"`
	ModuleID  uuid.UUID  `json:"module_id" gorm:"type:uuid"`
	SectionID *uuid.UUID `json:"section_id,omitempty" gorm:"type:uuid"`
	CanView   bool       `json:"can_view"`
	CanEdit   bool       `json:"can_edit"`
	CanDelete bool       `json:"can_delete"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (AccessRule) TableName() string { return "access_rules" }

func (r AccessRule) IsModuleWide() bool { return r.SectionID == nil }

func (r AccessRule) permissions() Permissions {
	return Permissions{CanView: r.CanView, CanEdit: r.CanEdit, CanDelete: r.CanDelete}
}

type Action string

const (
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Permissions is the effective result of resolving rules for a target. The zero value denies everything.
type Permissions struct {
	CanView   bool `json:"can_view"`
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

func (p Permissions) Allows(a Action) bool {
	switch a {
	case ActionView:
		return p.CanView
	case ActionEdit:
		return p.CanEdit
	case ActionDelete:
		return p.CanDelete
	}
	return false
}

func (p Permissions) or(o Permissions) Permissions {
	return Permissions{
		CanView:   p.CanView || o.CanView,
		CanEdit:   p.CanEdit || o.CanEdit,
		CanDelete: p.CanDelete || o.CanDelete,
	}
}

// FullPermissions is what administrators receive.
var FullPermissions = Permissions{CanView: true, CanEdit: true, CanDelete: true}

// RuleInput is one rule of an upsert request.
type RuleInput struct {
	RoleID    uuid.UUID  `json:"role_id" validate:"required"`
	ModuleID  uuid.UUID  `json:"module_id" validate:"required"`
	SectionID *uuid.UUID `json:"section_id,omitempty"`
	CanView   bool       `json:"can_view"`
	CanEdit   bool       `json:"can_edit"`
	CanDelete bool       `json:"can_delete"`
}

// BulkUpdateRequest is the body of PUT /api/roleaccess/:roleId. RoleID on each rule may be
// omitted; it defaults to the path role.
type BulkUpdateRequest struct {
	Rules []RuleInput `json:"rules" validate:"required,min=1,dive"`
}

type BulkUpdateResult struct {
	RoleID  uuid.UUID `json:"role_id"`
	Applied int       `json:"applied"`
}

type RuleFilter struct {
	RoleID   *uuid.UUID
	ModuleID *uuid.UUID
}

type SeedResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// RoleRef is the part of a role the rule seeder needs.
type RoleRef struct {
	ID      uuid.UUID
	Name    string
	IsAdmin bool
}
