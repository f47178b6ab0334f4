package access

import (
	"context"
	"time"

	"go-lms/internal/common/apperrors"
	"go-lms/internal/database"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type RuleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AccessRule, error)
	FindActiveByRole(ctx context.Context, roleID uuid.UUID) ([]AccessRule, error)
	FindActiveByRoles(ctx context.Context, roleIDs []uuid.UUID, moduleID uuid.UUID) ([]AccessRule, error)
	FindOne(ctx context.Context, roleID, moduleID uuid.UUID, sectionID *uuid.UUID) (*AccessRule, error)
	ViewableModuleIDs(ctx context.Context, roleIDs []uuid.UUID) ([]uuid.UUID, error)
	ListActive(ctx context.Context, filter RuleFilter) ([]AccessRule, error)
	Upsert(ctx context.Context, rule *AccessRule) error
	BulkUpsert(ctx context.Context, rules []AccessRule) (int, error)
	InsertIfAbsent(ctx context.Context, rule *AccessRule) (bool, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type RuleRepositoryImpl struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &RuleRepositoryImpl{db: db}
}

func (r *RuleRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*AccessRule, error) {
	var rule AccessRule
	if err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error; err != nil {
		if database.IsRecordNotFound(err) {
			return nil, apperrors.NotFound("access rule", id)
		}
		return nil, errors.Wrap(err, "find access rule")
	}
	return &rule, nil
}

func (r *RuleRepositoryImpl) FindActiveByRole(ctx context.Context, roleID uuid.UUID) ([]AccessRule, error) {
	rules := make([]AccessRule, 0)
	err := r.db.WithContext(ctx).
		Where("role_id = ? AND is_active", roleID).
		Order("module_id, section_id NULLS FIRST").
		Find(&rules).Error
	if err != nil {
		return nil, errors.Wrap(err, "find rules for role")
	}
	return rules, nil
}

func (r *RuleRepositoryImpl) FindActiveByRoles(ctx context.Context, roleIDs []uuid.UUID, moduleID uuid.UUID) ([]AccessRule, error) {
	rules := make([]AccessRule, 0)
	if len(roleIDs) == 0 {
		return rules, nil
	}
	err := r.db.WithContext(ctx).
		Where("role_id IN ? AND module_id = ? AND is_active", roleIDs, moduleID).
		Find(&rules).Error
	if err != nil {
		return nil, errors.Wrap(err, "find rules for roles")
	}
	return rules, nil
}

// FindOne returns the rule for the exact (role, module, section) target, active or not, or
// nil when there is none.
func (r *RuleRepositoryImpl) FindOne(ctx context.Context, roleID, moduleID uuid.UUID, sectionID *uuid.UUID) (*AccessRule, error) {
	return findOne(r.db.WithContext(ctx), roleID, moduleID, sectionID)
}

func findOne(db *gorm.DB, roleID, moduleID uuid.UUID, sectionID *uuid.UUID) (*AccessRule, error) {
	q := db.Where("role_id = ? AND module_id = ?", roleID, moduleID)
	if sectionID == nil {
		q = q.Where("section_id IS NULL")
	} else {
		q = q.Where("section_id = ?", *sectionID)
	}

	var rules []AccessRule
	if err := q.Limit(1).Find(&rules).Error; err != nil {
		return nil, errors.Wrap(err, "find access rule")
	}
	if len(rules) == 0 {
		return nil, nil
	}
	return &rules[0], nil
}

// ViewableModuleIDs returns modules where any of the roles holds an active view grant at
// module or section level.
func (r *RuleRepositoryImpl) ViewableModuleIDs(ctx context.Context, roleIDs []uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	if len(roleIDs) == 0 {
		return ids, nil
	}
	err := r.db.WithContext(ctx).Model(&AccessRule{}).
		Distinct("module_id").
		Where("role_id IN ? AND is_active AND can_view", roleIDs).
		Pluck("module_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "find viewable modules")
	}
	return ids, nil
}

func (r *RuleRepositoryImpl) ListActive(ctx context.Context, filter RuleFilter) ([]AccessRule, error) {
	q := r.db.WithContext(ctx).Where("is_active")
	if filter.RoleID != nil {
		q = q.Where("role_id = ?", *filter.RoleID)
	}
	if filter.ModuleID != nil {
		q = q.Where("module_id = ?", *filter.ModuleID)
	}

	rules := make([]AccessRule, 0)
	if err := q.Order("role_id, module_id, section_id NULLS FIRST").Find(&rules).Error; err != nil {
		return nil, errors.Wrap(err, "list access rules")
	}
	return rules, nil
}

// Upsert inserts rule, or updates the flags of the existing rule for the same target and
// reactivates it. On return rule holds the stored row.
func (r *RuleRepositoryImpl) Upsert(ctx context.Context, rule *AccessRule) error {
	return upsert(r.db.WithContext(ctx), rule)
}

func upsert(db *gorm.DB, rule *AccessRule) error {
	now := time.Now().UTC()

	existing, err := findOne(db, rule.RoleID, rule.ModuleID, rule.SectionID)
	if err != nil {
		return err
	}

	if existing == nil {
		if rule.ID == uuid.Nil {
			rule.ID = uuid.New()
		}
		rule.IsActive = true
		rule.CreatedAt = now
		rule.UpdatedAt = now
		if err := db.Create(rule).Error; err != nil {
			return mapWriteError(err)
		}
		return nil
	}

	err = db.Model(&AccessRule{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
		"can_view":   rule.CanView,
		"can_edit":   rule.CanEdit,
		"can_delete": rule.CanDelete,
		"is_active":  true,
		"updated_at": now,
	}).Error
	if err != nil {
		return mapWriteError(err)
	}

	rule.ID = existing.ID
	rule.IsActive = true
	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = now
	return nil
}

// BulkUpsert applies every rule in one transaction. Any failure rolls back all of them.
func (r *RuleRepositoryImpl) BulkUpsert(ctx context.Context, rules []AccessRule) (int, error) {
	applied := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rules {
			if err := upsert(tx, &rules[i]); err != nil {
				return err
			}
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

// InsertIfAbsent creates rule unless a rule for the same target already exists, active or
// not. It reports whether a row was inserted.
func (r *RuleRepositoryImpl) InsertIfAbsent(ctx context.Context, rule *AccessRule) (bool, error) {
	db := r.db.WithContext(ctx)
	existing, err := findOne(db, rule.RoleID, rule.ModuleID, rule.SectionID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	now := time.Now().UTC()
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	rule.IsActive = true
	rule.CreatedAt = now
	rule.UpdatedAt = now
	if err := db.Create(rule).Error; err != nil {
		if database.IsUniqueViolation(err) {
			// Created concurrently; nothing left to do.
			return false, nil
		}
		return false, mapWriteError(err)
	}
	return true, nil
}

func (r *RuleRepositoryImpl) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&AccessRule{}).
		Where("id = ? AND is_active", id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return errors.Wrap(res.Error, "deactivate access rule")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("access rule", id)
	}
	return nil
}

func mapWriteError(err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return apperrors.Conflict("an access rule for this role and target already exists")
	case database.IsForeignKeyViolation(err):
		return apperrors.Validation("access rule references a role, module or section that does not exist")
	default:
		return errors.Wrap(err, "write access rule")
	}
}
