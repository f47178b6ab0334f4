package user

import (
	"context"

	"go-lms/internal/common/apperrors"
	"go-lms/internal/database"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *User, roleIDs []uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]User, int64, error)
	RoleNames(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]string, error)
	ReplaceRoles(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error
	TouchLogin(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *User, roleIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperrors.Conflict("username or email already taken")
			}
			return errors.Wrap(err, "create user")
		}
		return insertRoles(tx, user.ID, roleIDs)
	})
}

func insertRoles(tx *gorm.DB, userID uuid.UUID, roleIDs []uuid.UUID) error {
	if len(roleIDs) == 0 {
		return nil
	}
	rows := make([]UserRole, 0, len(roleIDs))
	for _, id := range roleIDs {
		rows = append(rows, UserRole{UserID: userID, RoleID: id})
	}
	if err := tx.Create(&rows).Error; err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.Validation("unknown role", apperrors.FieldError{Field: "role_ids", Message: "references a role that does not exist"})
		}
		if database.IsUniqueViolation(err) {
			return apperrors.Validation("duplicate role", apperrors.FieldError{Field: "role_ids", Message: "contains duplicates"})
		}
		return errors.Wrap(err, "assign roles")
	}
	return nil
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if database.IsRecordNotFound(err) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, errors.Wrap(err, "find user")
	}
	return &u, nil
}

func (r *UserRepositoryImpl) FindByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "username = ?", username).Error; err != nil {
		if database.IsRecordNotFound(err) {
			return nil, apperrors.NotFound("user", nil)
		}
		return nil, errors.Wrap(err, "find user by username")
	}
	return &u, nil
}

func (r *UserRepositoryImpl) List(ctx context.Context, limit, offset int) ([]User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&User{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count users")
	}

	users := make([]User, 0)
	if err := r.db.WithContext(ctx).Order("username").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list users")
	}
	return users, total, nil
}

func (r *UserRepositoryImpl) RoleNames(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	out := make(map[uuid.UUID][]string, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		UserID uuid.UUID
		Name   string
	}
	err := r.db.WithContext(ctx).
		Table("user_roles").
		Select("user_roles.user_id, roles.name").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id IN ?", userIDs).
		Order("roles.name").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "load user roles")
	}
	for _, row := range rows {
		out[row.UserID] = append(out[row.UserID], row.Name)
	}
	return out, nil
}

func (r *UserRepositoryImpl) ReplaceRoles(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&UserRole{}).Error; err != nil {
			return errors.Wrap(err, "clear roles")
		}
		return insertRoles(tx, userID, roleIDs)
	})
}

func (r *UserRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": isActive, "updated_at": gorm.Expr("NOW()")})
	if res.Error != nil {
		return errors.Wrap(res.Error, "update user status")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("user", id)
	}
	return nil
}

func (r *UserRepositoryImpl) TouchLogin(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).
		Update("last_login_at", gorm.Expr("NOW()")).Error
}

func (r *UserRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&User{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete user")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("user", id)
	}
	return nil
}
