package repository

import (
	"context"
	"time"

	"github.com/storehub/auth-service/internal/model"
	"github.com/storehub/auth-service/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	start := time.Now()
	var user model.User

	result := r.db.WithContext(ctx).Where("id = ?", id).First(&user)
	if result.Error != nil {
		logger.GetLogger().Debug("Failed to get user by ID",
			zap.Uint("user_id", id),
			zap.Duration("duration", time.Since(start)),
			zap.Error(result.Error))
		return nil, result.Error
	}

	return &user, nil
}

// GetByEmail finds a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	start := time.Now()
	var user model.User

	result := r.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		logger.GetLogger().Debug("Failed to get user by email",
			zap.String("email", email),
			zap.Duration("duration", time.Since(start)),
			zap.Error(result.Error))
		return nil, result.Error
	}

	return &user, nil
}

// Create inserts a new user. Duplicate emails surface as
// gorm.ErrDuplicatedKey via the driver's error translation.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	start := time.Now()
	result := r.db.WithContext(ctx).Create(user)
	duration := time.Since(start)

	if result.Error != nil {
		logger.GetLogger().Error("Failed to create user",
			zap.String("email", user.Email),
			zap.Duration("duration", duration),
			zap.Error(result.Error))
		return result.Error
	}

	logger.GetLogger().Info("User created",
		zap.String("email", user.Email),
		zap.Uint("user_id", user.ID),
		zap.Duration("duration", duration))

	return nil
}

// UpdateProfile updates the mutable profile fields only.
func (r *UserRepository) UpdateProfile(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logger.GetLogger().Error("Failed to update user profile",
			zap.Uint("user_id", id),
			zap.Error(result.Error))
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
