package repository

import (
	"context"

	"github.com/storehub/auth-service/internal/model"
	"github.com/storehub/auth-service/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// GetByName looks up a seeded role. Roles are immutable after bootstrap,
// so a miss means the seed never ran.
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role

	result := r.db.WithContext(ctx).Where("name = ?", name).First(&role)
	if result.Error != nil {
		logger.GetLogger().Error("Failed to get role by name",
			zap.String("role", name),
			zap.Error(result.Error))
		return nil, result.Error
	}

	return &role, nil
}

func (r *RoleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.Role{}).Count(&count)
	return count, result.Error
}
