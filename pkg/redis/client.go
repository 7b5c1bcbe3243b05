package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/storehub/auth-service/config"
	"github.com/storehub/auth-service/internal/constants"
	"github.com/storehub/auth-service/pkg/logger"
	"go.uber.org/zap"
)

// Client wraps the go-redis client with the cache operations this service
// needs.
type Client struct {
	rdb *goredis.Client
}

// NewClient connects to redis and verifies the connection with a ping.
func NewClient(cfg *config.Config) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.RedisAddress(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.Database,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolTimeout:  cfg.Redis.PoolTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.GetLogger().Info("Redis connected",
		zap.String("addr", cfg.RedisAddress()),
		zap.Int("db", cfg.Redis.Database))

	return &Client{rdb: rdb}, nil
}

// Ping reports connection health.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// AllowOTPSend reserves the per-email resend slot. It returns false while
// a previous reservation is still within the resend interval.
func (c *Client) AllowOTPSend(ctx context.Context, email string, interval time.Duration) (bool, error) {
	if interval <= 0 {
		return true, nil
	}

	key := constants.CacheKeyOTPResend + email
	return c.rdb.SetNX(ctx, key, "1", interval).Result()
}
