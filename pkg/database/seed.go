package database

import (
	"errors"

	"github.com/storehub/auth-service/config"
	"github.com/storehub/auth-service/internal/model"
	"github.com/storehub/auth-service/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed creates the role set and the admin user. It is idempotent and runs
// at every startup.
func Seed(db *gorm.DB, cfg *config.Config) error {
	if err := seedRoles(db); err != nil {
		return err
	}
	return seedAdmin(db, cfg)
}

func seedRoles(db *gorm.DB) error {
	roles := []model.Role{
		{Name: model.RoleAdmin, Description: "Full administrative access"},
		{Name: model.RoleSeller, Description: "Seller account"},
		{Name: model.RoleClient, Description: "Client account"},
	}

	for _, role := range roles {
		var existing model.Role
		result := db.Where("name = ?", role.Name).First(&existing)
		if result.Error == nil {
			continue
		}
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}

		if err := db.Create(&role).Error; err != nil {
			return err
		}

		logger.GetLogger().Info("Role seeded", zap.String("role", role.Name))
	}

	return nil
}

func seedAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		logger.GetLogger().Warn("Admin seed skipped, credentials not configured")
		return nil
	}

	var existing model.User
	result := db.Where("email = ?", cfg.Admin.Email).First(&existing)
	if result.Error == nil {
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	var adminRole model.Role
	if err := db.Where("name = ?", model.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := model.User{
		Name:        cfg.Admin.Name,
		Email:       cfg.Admin.Email,
		Password:    string(hashedPassword),
		PhoneNumber: cfg.Admin.PhoneNumber,
		Status:      model.UserStatusActive,
		RoleID:      adminRole.ID,
	}

	if err := db.Create(&user).Error; err != nil {
		return err
	}

	logger.GetLogger().Info("Admin user seeded", zap.String("email", cfg.Admin.Email))
	return nil
}
