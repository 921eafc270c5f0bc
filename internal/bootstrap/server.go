package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/makkenzo/gdb-api/internal/apiversion"
	"github.com/makkenzo/gdb-api/internal/config"
	"github.com/makkenzo/gdb-api/internal/handler"
	"github.com/makkenzo/gdb-api/internal/openapi"
	"github.com/makkenzo/gdb-api/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	apiV1 = apiversion.New(1, 0)
	apiV2 = apiversion.New(2, 0)
)

// Server provides the services and handlers, registers every route and serves HTTP for the
// lifetime of the application.
func Server() fx.Option {
	return fx.Module("server",
		fx.Provide(
			service.NewForecastService,
			handler.NewForecastHandler,
			handler.NewAuthHandler,
			newHealthHandler,
			newHTTPServer,
		),
		fx.Invoke(registerRoutes),
		fx.Invoke(func(*http.Server) {}),
	)
}

func newHealthHandler(pool *pgxpool.Pool, client *redis.Client, logger *zap.Logger) *handler.HealthHandler {
	return handler.NewHealthHandler(pool, client, logger)
}

type routeParams struct {
	fx.In

	Engine       *gin.Engine
	Collector    *openapi.Collector
	Authenticate gin.HandlerFunc `name:"authenticate"`
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	Forecasts    *handler.ForecastHandler
	Logger       *zap.Logger
}

func registerRoutes(p routeParams) {
	p.Engine.GET("/healthz", p.Health.Check)
	p.Engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	registry := handler.NewRegistry(p.Engine, p.Collector, p.Authenticate)

	v1 := registry.Version(apiV1, true)
	p.Auth.Register(v1)
	p.Forecasts.RegisterV1(v1)

	v2 := registry.Version(apiV2, false)
	p.Auth.Register(v2)
	p.Forecasts.RegisterV2(v2)

	p.Logger.Named("Routes").Info("API routes registered",
		zap.String("supported", apiversion.Join(p.Collector.Versions().Supported())),
		zap.String("deprecated", apiversion.Join(p.Collector.Versions().Deprecated())),
	)
}

func newHTTPServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg *config.Config, router *gin.Engine, logger *zap.Logger) *http.Server {
	log := logger.Named("HTTPServer")

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("http server failed: %w", err)
			}
			log.Info("HTTP server listening", zap.String("port", cfg.Server.Port))

			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("HTTP server Serve error", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
					return
				}
				log.Info("HTTP server stopped listening.")
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down HTTP server...")
			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownPeriod)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("HTTP server graceful shutdown failed", zap.Error(err))
				return fmt.Errorf("http server shutdown error: %w", err)
			}
			log.Info("HTTP server shutdown complete.")
			return nil
		},
	})
	return srv
}
