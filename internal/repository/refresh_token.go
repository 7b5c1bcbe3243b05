package repository

import (
	"context"
	"time"

	"github.com/storehub/auth-service/internal/model"
	"github.com/storehub/auth-service/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	result := r.db.WithContext(ctx).Create(token)
	if result.Error != nil {
		logger.GetLogger().Error("Failed to store refresh token",
			zap.Uint("user_id", token.UserID),
			zap.Error(result.Error))
		return result.Error
	}

	return nil
}

func (r *RefreshTokenRepository) GetByToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	var record model.RefreshToken

	result := r.db.WithContext(ctx).Where("token = ?", token).First(&record)
	if result.Error != nil {
		return nil, result.Error
	}

	return &record, nil
}

// Delete removes a refresh token row. Rotation and logout both go through
// here; a missing row is reported as gorm.ErrRecordNotFound so reuse of a
// rotated token is detectable.
func (r *RefreshTokenRepository) Delete(ctx context.Context, token string) error {
	result := r.db.WithContext(ctx).Where("token = ?", token).Delete(&model.RefreshToken{})
	if result.Error != nil {
		logger.GetLogger().Error("Failed to delete refresh token",
			zap.Error(result.Error))
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// DeleteByUser revokes every refresh token issued to a user.
func (r *RefreshTokenRepository) DeleteByUser(ctx context.Context, userID uint) error {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.RefreshToken{})
	return result.Error
}

// DeleteExpired prunes tokens whose expiry has passed (batch operation).
func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&model.RefreshToken{})

	if result.Error != nil {
		logger.GetLogger().Error("Failed to prune expired refresh tokens",
			zap.Error(result.Error))
		return 0, result.Error
	}

	if result.RowsAffected > 0 {
		logger.GetLogger().Info("Expired refresh tokens pruned",
			zap.Int64("count", result.RowsAffected))
	}

	return result.RowsAffected, nil
}
