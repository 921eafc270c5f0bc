package bootstrap

import (
	"github.com/gin-gonic/gin"
	"github.com/makkenzo/gdb-api/internal/config"
	"github.com/makkenzo/gdb-api/internal/domain/user"
	"github.com/makkenzo/gdb-api/internal/handler/middleware"
	"github.com/makkenzo/gdb-api/internal/service"
	"github.com/makkenzo/gdb-api/internal/storage/memstorage"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// CustomAuthentication provides JWT bearer issuing and validation, the seeded user store
// and the named "authenticate" middleware used by versioned routers.
func CustomAuthentication() fx.Option {
	return fx.Module("authentication",
		fx.Provide(
			newTokenService,
			fx.Annotate(memstorage.NewUserStore, fx.As(new(user.Repository))),
			service.NewAuthService,
			fx.Annotate(newAuthenticate, fx.ResultTags(`name:"authenticate"`)),
		),
	)
}

func newTokenService(cfg *config.JWTConfig, logger *zap.Logger) (*service.TokenService, error) {
	return service.NewTokenService(cfg, logger)
}

func newAuthenticate(tokens *service.TokenService, logger *zap.Logger) gin.HandlerFunc {
	return middleware.Authenticate(tokens, logger)
}
