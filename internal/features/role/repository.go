package role

import (
	"context"

	"go-lms/internal/common/apperrors"
	"go-lms/internal/database"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	FindByID(ctx context.Context, id uuid.UUID) (*Role, error)
	FindByName(ctx context.Context, name string) (*Role, error)
	FindByNames(ctx context.Context, names []string) ([]Role, error)
	UserActive(ctx context.Context, userID uuid.UUID) (bool, error)
	List(ctx context.Context) ([]Role, error)
	Update(ctx context.Context, role *Role) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type RoleRepositoryImpl struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &RoleRepositoryImpl{db: db}
}

func (r *RoleRepositoryImpl) Create(ctx context.Context, role *Role) error {
	if err := r.db.WithContext(ctx).Create(role).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("a role named " + role.Name + " already exists")
		}
		return errors.Wrap(err, "create role")
	}
	return nil
}

func (r *RoleRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*Role, error) {
	var role Role
	if err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		if database.IsRecordNotFound(err) {
			return nil, apperrors.NotFound("role", id)
		}
		return nil, errors.Wrap(err, "find role")
	}
	return &role, nil
}

func (r *RoleRepositoryImpl) FindByName(ctx context.Context, name string) (*Role, error) {
	var role Role
	if err := r.db.WithContext(ctx).First(&role, "name = ?", name).Error; err != nil {
		if database.IsRecordNotFound(err) {
			return nil, apperrors.NotFound("role", nil)
		}
		return nil, errors.Wrap(err, "find role by name")
	}
	return &role, nil
}

func (r *RoleRepositoryImpl) FindByNames(ctx context.Context, names []string) ([]Role, error) {
	roles := make([]Role, 0, len(names))
	if len(names) == 0 {
		return roles, nil
	}
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&roles).Error; err != nil {
		return nil, errors.Wrap(err, "find roles by name")
	}
	return roles, nil
}

// UserActive reads users.is_active directly; a missing user counts as inactive.
func (r *RoleRepositoryImpl) UserActive(ctx context.Context, userID uuid.UUID) (bool, error) {
	var row struct{ IsActive bool }
	err := r.db.WithContext(ctx).Table("users").Select("is_active").Where("id = ?", userID).Take(&row).Error
	if err != nil {
		if database.IsRecordNotFound(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "find user status")
	}
	return row.IsActive, nil
}

func (r *RoleRepositoryImpl) List(ctx context.Context) ([]Role, error) {
	roles := make([]Role, 0)
	if err := r.db.WithContext(ctx).Order("name").Find(&roles).Error; err != nil {
		return nil, errors.Wrap(err, "list roles")
	}
	return roles, nil
}

func (r *RoleRepositoryImpl) Update(ctx context.Context, role *Role) error {
	err := r.db.WithContext(ctx).Model(role).Select("name", "description", "is_admin", "updated_at").Updates(role).Error
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("a role named " + role.Name + " already exists")
		}
		return errors.Wrap(err, "update role")
	}
	return nil
}

// Delete removes the role. Its access rules and user assignments go with it (ON DELETE CASCADE).
func (r *RoleRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Role{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete role")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("role", id)
	}
	return nil
}
