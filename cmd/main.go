package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/storehub/auth-service/config"
	"github.com/storehub/auth-service/internal/handler"
	"github.com/storehub/auth-service/internal/middleware"
	"github.com/storehub/auth-service/internal/repository"
	"github.com/storehub/auth-service/internal/router"
	"github.com/storehub/auth-service/internal/service"
	"github.com/storehub/auth-service/pkg/database"
	"github.com/storehub/auth-service/pkg/logger"
	"github.com/storehub/auth-service/pkg/redis"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
	)

	db, err := database.NewPostgresDB(config)
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	if err := database.Seed(db, config); err != nil {
		logger.GetLogger().Fatal("Failed to seed database", zap.Error(err))
	}
	logger.GetLogger().Info("Database seeded successfully")

	redisClient, err := redis.NewClient(config)
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	codeRepo := repository.NewVerificationCodeRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	// Services
	tokenService, err := service.NewTokenService(config.JWT)
	if err != nil {
		logger.GetLogger().Fatal("Failed to initialize token service", zap.Error(err))
	}
	roleService := service.NewRoleService(roleRepo)
	authService := service.NewAuthService(userRepo, codeRepo, refreshTokenRepo, roleService, tokenService, redisClient, config.Auth)
	userService := service.NewUserService(userRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Middleware
	validationMiddleware := middleware.NewValidationMiddleware()
	authMiddleware := middleware.NewAuthMiddleware(tokenService, config.Auth.APIKeySecret)

	r := router.NewRouter(
		authHandler,
		userHandler,
		healthHandler,
		validationMiddleware,
		authMiddleware,
		config,
	).SetupRoutes()

	// Prune expired refresh tokens and verification codes in the
	// background.
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go runCleanup(cleanupCtx, refreshTokenRepo, codeRepo)

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
		)
		if err := r.Run(":" + config.App.Port); err != nil {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")
}

func runCleanup(ctx context.Context, tokens *repository.RefreshTokenRepository, codes *repository.VerificationCodeRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := tokens.DeleteExpired(ctx); err != nil {
				logger.GetLogger().Error("Refresh token cleanup failed", zap.Error(err))
			}
			if _, err := codes.DeleteExpired(ctx); err != nil {
				logger.GetLogger().Error("Verification code cleanup failed", zap.Error(err))
			}
		}
	}
}
