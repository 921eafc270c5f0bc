package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/makkenzo/gdb-api/internal/config"
	"github.com/makkenzo/gdb-api/internal/domain/forecast"
	"github.com/makkenzo/gdb-api/internal/mapper"
	"github.com/makkenzo/gdb-api/internal/storage/postgres"
	redisstore "github.com/makkenzo/gdb-api/internal/storage/redis"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func CustomMapper() fx.Option {
	return fx.Module("mapper",
		fx.Provide(mapper.New),
	)
}

// CustomDatabase provides the PostgreSQL pool (migrated on startup when enabled), the Redis
// client and the forecast storage built on them.
func CustomDatabase() fx.Option {
	return fx.Module("database",
		fx.Provide(
			newPgxPool,
			newRedisClient,
			fx.Annotate(newForecastRepository, fx.As(new(forecast.Repository))),
			newForecastCache,
		),
	)
}

func newPgxPool(lc fx.Lifecycle, cfg *config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	ctx := context.Background()

	pool, err := postgres.NewPgxPool(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	lc.Append(fx.StopHook(pool.Close))

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, logger); err != nil {
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}
	return pool, nil
}

func newRedisClient(lc fx.Lifecycle, cfg *config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	client, err := redisstore.NewRedisClient(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	lc.Append(fx.StopHook(client.Close))
	return client, nil
}

func newForecastRepository(pool *pgxpool.Pool, logger *zap.Logger) *postgres.ForecastRepository {
	return postgres.NewForecastRepository(pool, logger)
}

// newForecastCache returns a nil Cache when caching is disabled by a non-positive TTL.
func newForecastCache(client *redis.Client, cfg *config.CacheConfig, logger *zap.Logger) forecast.Cache {
	if cfg.TTL <= 0 {
		logger.Info("Forecast cache disabled")
		return nil
	}
	return redisstore.NewForecastCache(client, cfg.TTL, logger)
}
