package repository

import (
	"errors"

	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	FindAll() ([]model.User, error)
	FindByID(id uint) (*model.User, error)
	FindByLogin(login string) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	LockByID(id uint) (*model.User, error)
	Create(user *model.User) error
	Update(user *model.User, withPassword bool) (int64, error)
	Delete(id uint) (int64, error)
	FindRoles() ([]model.Role, error)
	RoleExists(id uint) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

func (r *userRepository) FindAll() ([]model.User, error) {
	var users []model.User
	if err := r.db.Preload("Role").Order("id ASC").Find(&users).Error; err != nil {
		logger.Error("Failed to list users", err)
		return nil, err
	}

	logger.Debug("Users found in database", logger.Fields{
		"count": len(users),
	})
	return users, nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	logger.Debug("Finding user by ID in database", logger.Fields{
		"user_id": id,
	})

	var user model.User
	if err := r.db.Preload("Role").First(&user, id).Error; err != nil {
		r.logLookupError("Failed to find user by ID in database", err, logger.Fields{"user_id": id})
		return nil, err
	}

	logger.Debug("User found by ID in database", logger.Fields{
		"user_id": user.ID,
		"login":   user.Login,
	})
	return &user, nil
}

// FindByLogin matches the login case-insensitively.
func (r *userRepository) FindByLogin(login string) (*model.User, error) {
	logger.Debug("Finding user by login in database", logger.Fields{
		"login": login,
	})

	var user model.User
	if err := r.db.Preload("Role").Where("LOWER(login) = LOWER(?)", login).First(&user).Error; err != nil {
		r.logLookupError("Failed to find user by login in database", err, logger.Fields{"login": login})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		r.logLookupError("Failed to find user by email in database", err, logger.Fields{"email": email})
		return nil, err
	}
	return &user, nil
}

// LockByID loads the user with a row lock for the rest of the transaction.
// SQLite ignores the locking clause and serializes writers instead.
func (r *userRepository) LockByID(id uint) (*model.User, error) {
	var user model.User
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error
	if err != nil {
		r.logLookupError("Failed to lock user row", err, logger.Fields{"user_id": id})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", logger.Fields{
		"login": user.Login,
		"email": user.Email,
	})

	if err := r.db.Omit("Role").Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, logger.Fields{
			"login": user.Login,
		})
		return err
	}

	logger.Debug("User created in database", logger.Fields{
		"user_id": user.ID,
		"login":   user.Login,
	})
	return nil
}

// Update writes login, email and role. The password hash is written only when withPassword is set.
func (r *userRepository) Update(user *model.User, withPassword bool) (int64, error) {
	logger.Debug("Updating user in database", logger.Fields{
		"user_id":       user.ID,
		"with_password": withPassword,
	})

	columns := []interface{}{"email", "role_id"}
	if withPassword {
		columns = append(columns, "password_hash")
	}

	result := r.db.Model(&model.User{}).
		Where("id = ?", user.ID).
		Select("login", columns...).
		Updates(user)
	if result.Error != nil {
		logger.Error("Failed to update user in database", result.Error, logger.Fields{
			"user_id": user.ID,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *userRepository) Delete(id uint) (int64, error) {
	result := r.db.Delete(&model.User{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete user from database", result.Error, logger.Fields{
			"user_id": id,
		})
		return 0, result.Error
	}

	logger.Debug("User deleted from database", logger.Fields{
		"user_id":       id,
		"rows_affected": result.RowsAffected,
	})
	return result.RowsAffected, nil
}

func (r *userRepository) FindRoles() ([]model.Role, error) {
	var roles []model.Role
	if err := r.db.Order("id ASC").Find(&roles).Error; err != nil {
		logger.Error("Failed to list roles", err)
		return nil, err
	}
	return roles, nil
}

func (r *userRepository) RoleExists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Role{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) logLookupError(msg string, err error, fields logger.Fields) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Debug("User not found in database", fields)
		return
	}
	logger.Error(msg, err, fields)
}
