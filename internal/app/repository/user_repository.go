package repository

import (
	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	ExistsByUsername(username string, excludeID uint) (bool, error)
	ExistsByEmail(email string, excludeID uint) (bool, error)
	FindIDsByRole(role model.UserRole) ([]uint, error)
	UpdateProfile(id uint, username, email string) error
	WithTx(tx *gorm.DB) UserRepository
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

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"username": user.Username,
		"role":     user.Role,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"username": user.Username,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	logger.Debug("Finding user by ID in database", map[string]interface{}{
		"user_id": id,
	})

	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		logger.Error("Failed to find user by ID in database", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	logger.Debug("Finding user by username in database", map[string]interface{}{
		"username": username,
	})

	var user model.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		logger.Error("Failed to find user by username in database", err, map[string]interface{}{
			"username": username,
		})
		return nil, err
	}

	logger.Debug("User found by username in database", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return &user, nil
}

// ExistsByUsername ignores the row with excludeID so a user can keep their own name.
func (r *userRepository) ExistsByUsername(username string, excludeID uint) (bool, error) {
	return r.exists("username", username, excludeID)
}

func (r *userRepository) ExistsByEmail(email string, excludeID uint) (bool, error) {
	return r.exists("email", email, excludeID)
}

func (r *userRepository) exists(column, value string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&model.User{}).Where(column+" = ?", value)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		logger.Error("Failed to check user uniqueness in database", err, map[string]interface{}{
			"column": column,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) FindIDsByRole(role model.UserRole) ([]uint, error) {
	logger.Debug("Finding user IDs by role in database", map[string]interface{}{
		"role": role,
	})

	var ids []uint
	if err := r.db.Model(&model.User{}).Where("role = ?", role).Order("id").Pluck("id", &ids).Error; err != nil {
		logger.Error("Failed to find user IDs by role in database", err, map[string]interface{}{
			"role": role,
		})
		return nil, err
	}

	logger.Debug("User IDs found by role in database", map[string]interface{}{
		"role":  role,
		"count": len(ids),
	})
	return ids, nil
}

// UpdateProfile writes username and email only; role is never touched.
func (r *userRepository) UpdateProfile(id uint, username, email string) error {
	logger.Debug("Updating user profile in database", map[string]interface{}{
		"user_id": id,
	})

	result := r.db.Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"username": username,
		"email":    email,
	})
	if result.Error != nil {
		logger.Error("Failed to update user profile in database", result.Error, map[string]interface{}{
			"user_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("User profile updated in database", map[string]interface{}{
		"user_id": id,
	})
	return nil
}
