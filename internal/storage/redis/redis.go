package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/makkenzo/gdb-api/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	clientName  = "gdb-api"
	dialTimeout = 3 * time.Second
	pingTimeout = 5 * time.Second
)

func newOptions(cfg *config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		ClientName:  clientName,
		DialTimeout: dialTimeout,
	}
}

// NewRedisClient connects the client shared by the forecast cache and the health check. The
// client is closed again when the first ping fails.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	log := logger.Named("Redis")
	client := redis.NewClient(newOptions(cfg))

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		log.Error("Redis ping failed", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB), zap.Error(err))
		return nil, fmt.Errorf("redis %s/%d unreachable: %w", cfg.Addr, cfg.DB, err)
	}

	log.Info("Redis client ready", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return client, nil
}
