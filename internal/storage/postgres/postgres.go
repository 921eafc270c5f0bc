package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/makkenzo/gdb-api/internal/config"
	"go.uber.org/zap"
)

var ErrNoConnectionString = errors.New("no database connection string configured")

// ResolveConnectionString reads the DSN from the environment variable named by
// connectionStringSecretName. A name with no such variable is taken as the DSN itself, and
// database.url is the last fallback.
func ResolveConnectionString(cfg *config.DatabaseConfig) (string, error) {
	if name := cfg.ConnectionStringSecretName; name != "" {
		if dsn, ok := os.LookupEnv(name); ok && dsn != "" {
			return dsn, nil
		}
		if _, err := pgxpool.ParseConfig(name); err == nil {
			return name, nil
		}
	}
	if cfg.URL != "" {
		return cfg.URL, nil
	}
	return "", ErrNoConnectionString
}

func NewPgxPool(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	dsn, err := ResolveConnectionString(cfg)
	if err != nil {
		return nil, err
	}

	pgxConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres connection string: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		pgxConfig.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 && cfg.MaxIdleConns <= cfg.MaxOpenConns {
		pgxConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pgxConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, pgxConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres connection pool: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	defer cancelPing()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	logger.Info("Successfully connected to PostgreSQL",
		zap.String("host", pgxConfig.ConnConfig.Host),
		zap.String("database", pgxConfig.ConnConfig.Database),
	)
	return pool, nil
}
