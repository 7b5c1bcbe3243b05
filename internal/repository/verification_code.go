package repository

import (
	"context"
	"time"

	"github.com/storehub/auth-service/internal/model"
	"github.com/storehub/auth-service/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VerificationCodeRepository struct {
	db *gorm.DB
}

func NewVerificationCodeRepository(db *gorm.DB) *VerificationCodeRepository {
	return &VerificationCodeRepository{db: db}
}

// Upsert stores the code for an email, overwriting any outstanding code
// and its expiry. At most one active code exists per email.
func (r *VerificationCodeRepository) Upsert(ctx context.Context, code *model.VerificationCode) error {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "type", "expires_at"}),
	}).Create(code)

	if result.Error != nil {
		logger.GetLogger().Error("Failed to upsert verification code",
			zap.String("email", code.Email),
			zap.String("type", code.Type),
			zap.Error(result.Error))
		return result.Error
	}

	logger.GetLogger().Debug("Verification code stored",
		zap.String("email", code.Email),
		zap.String("type", code.Type),
		zap.Time("expires_at", code.ExpiresAt))

	return nil
}

func (r *VerificationCodeRepository) GetByEmail(ctx context.Context, email string) (*model.VerificationCode, error) {
	var code model.VerificationCode

	result := r.db.WithContext(ctx).Where("email = ?", email).First(&code)
	if result.Error != nil {
		return nil, result.Error
	}

	return &code, nil
}

// DeleteByEmail invalidates the outstanding code after a successful
// verification.
func (r *VerificationCodeRepository) DeleteByEmail(ctx context.Context, email string) error {
	result := r.db.WithContext(ctx).Where("email = ?", email).Delete(&model.VerificationCode{})
	if result.Error != nil {
		logger.GetLogger().Error("Failed to delete verification code",
			zap.String("email", email),
			zap.Error(result.Error))
	}
	return result.Error
}

// DeleteExpired prunes codes whose expiry has passed (batch operation).
func (r *VerificationCodeRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&model.VerificationCode{})

	if result.Error != nil {
		logger.GetLogger().Error("Failed to prune expired verification codes",
			zap.Error(result.Error))
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
