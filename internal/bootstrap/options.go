package bootstrap

import (
	"github.com/makkenzo/gdb-api/internal/config"
	"github.com/makkenzo/gdb-api/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// CustomOptions loads the configuration, exposes its sections to the graph and builds the
// application logger.
func CustomOptions(configPath string) fx.Option {
	return fx.Options(
		fx.Module("options", fx.Provide(
			func() (*config.Config, error) { return config.LoadConfig(configPath) },
			newLogger,
			func(cfg *config.Config) *config.JWTConfig { return &cfg.JWT },
			func(cfg *config.Config) *config.AuthConfig { return &cfg.Auth },
			func(cfg *config.Config) *config.DatabaseConfig { return &cfg.Database },
			func(cfg *config.Config) *config.RedisConfig { return &cfg.Redis },
			func(cfg *config.Config) *config.CacheConfig { return &cfg.Cache },
			func(cfg *config.Config) *config.CORSConfig { return &cfg.CORS },
		)),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	)
}

func newLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.NewZapLogger(cfg.Log.Level, cfg.App.IsDevelopment())
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(func() {
		_ = log.Sync()
	}))

	log.Info("Starting application...",
		zap.String("name", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
		zap.String("log_level", cfg.Log.Level),
	)
	return log, nil
}
