package bootstrap

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/gdb-api/internal/apiversion"
	"github.com/makkenzo/gdb-api/internal/config"
	"github.com/makkenzo/gdb-api/internal/handler/middleware"
	"github.com/makkenzo/gdb-api/internal/openapi"
	"github.com/makkenzo/gdb-api/internal/validation"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// CustomMVC provides the gin engine with the access log, the exception handler and the
// request metrics installed.
func CustomMVC() fx.Option {
	return fx.Module("mvc",
		fx.Provide(newEngine),
	)
}

// CustomAPIVersioning provides the supported version set and the endpoint collector, and
// reports versions and unknown routes on the engine.
func CustomAPIVersioning() fx.Option {
	return fx.Module("apiversioning",
		fx.Provide(
			apiversion.NewSet,
			openapi.NewCollector,
		),
		fx.Invoke(useVersioning),
	)
}

// CustomCORS installs the configured CORS policy.
func CustomCORS() fx.Option {
	return fx.Module("cors",
		fx.Invoke(useCORS),
	)
}

func newEngine(cfg *config.Config, logger *zap.Logger) *gin.Engine {
	if !cfg.App.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	validation.Register()

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.LoggerWithFormatter(accessLogFormatter))
	router.Use(middleware.Exception(logger, cfg.Errors.ExposeMessages))
	router.Use(middleware.Metrics())
	return router
}

func accessLogFormatter(param gin.LogFormatterParams) string {
	return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
		param.ClientIP,
		param.TimeStamp.Format(time.RFC1123),
		param.Method,
		param.Path,
		param.Request.Proto,
		param.StatusCode,
		param.Latency,
		param.Request.UserAgent(),
		param.ErrorMessage,
	)
}

func useVersioning(router *gin.Engine, versions *apiversion.Set) {
	router.Use(middleware.ReportVersions(versions))
	router.NoRoute(middleware.NotFound(versions))
	router.NoMethod(middleware.MethodNotAllowed())
}

func useCORS(router *gin.Engine, cfg *config.CORSConfig, logger *zap.Logger) error {
	h, err := middleware.CORS(cfg)
	if err != nil {
		return err
	}
	router.Use(h)
	logger.Named("CORS").Info("CORS policy applied", zap.String("policy", cfg.Policy), zap.Strings("origins", cfg.AllowedOrigins))
	return nil
}
