package bootstrap

import (
	"github.com/gin-gonic/gin"
	"github.com/makkenzo/gdb-api/internal/config"
	"github.com/makkenzo/gdb-api/internal/openapi"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// CustomSwagger provides the document generator and mounts /swagger in Development or when
// swagger.enabled is set.
func CustomSwagger() fx.Option {
	return fx.Module("swagger",
		fx.Provide(newGenerator),
		fx.Invoke(mountSwagger),
	)
}

func newGenerator(collector *openapi.Collector, cfg *config.Config) *openapi.Generator {
	return openapi.NewGenerator(collector, openapi.Options{
		Title:       cfg.Swagger.Title,
		Description: cfg.Swagger.Description,
		Filters:     []openapi.OperationFilter{openapi.SecurityRequirementFilter{}},
	})
}

func mountSwagger(router *gin.Engine, gen *openapi.Generator, cfg *config.Config, logger *zap.Logger) {
	if !cfg.App.IsDevelopment() && !cfg.Swagger.Enabled {
		return
	}
	gen.Mount(router, true, logger)
}
