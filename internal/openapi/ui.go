package openapi

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/gdb-api/internal/ierr"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

const DocumentFile = "/swagger.json"

// swagDoc adapts a generator group to swag's instance registry, which gin-swagger reads
// doc.json from.
type swagDoc struct {
	mu    sync.RWMutex
	gen   *Generator
	group string
}

func (d *swagDoc) ReadDoc() string {
	d.mu.RLock()
	gen := d.gen
	d.mu.RUnlock()

	raw, err := gen.JSON(d.group)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

var (
	registryMu sync.Mutex
	registered = map[string]*swagDoc{}
)

// publish registers the group with swag. swag.Register panics on duplicates, so a
// repeated publish only swaps the generator.
func publish(gen *Generator, group string) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if d, ok := registered[group]; ok {
		d.mu.Lock()
		d.gen = gen
		d.mu.Unlock()
		return
	}

	d := &swagDoc{gen: gen, group: group}
	registered[group] = d
	swag.Register(group, d)
}

// Mount serves /swagger/{group}/swagger.json and, when ui is set, the Swagger UI for
// every group under /swagger/{group}/index.html.
func (g *Generator) Mount(r gin.IRouter, ui bool, logger *zap.Logger) {
	log := logger.Named("Swagger")

	uiHandlers := map[string]gin.HandlerFunc{}
	uiFor := func(group string) gin.HandlerFunc {
		if h, ok := uiHandlers[group]; ok {
			return h
		}
		publish(g, group)
		// Each group needs its own file handler: gin-swagger rewrites the handler prefix.
		h := ginSwagger.WrapHandler(swaggerFiles.NewHandler(),
			ginSwagger.InstanceName(group),
			ginSwagger.URL("swagger.json"),
			ginSwagger.DocExpansion("list"),
			ginSwagger.PersistAuthorization(true),
		)
		uiHandlers[group] = h
		return h
	}
	var uiMu sync.Mutex

	r.GET("/swagger", func(c *gin.Context) {
		groups := g.Groups()
		if !ui || len(groups) == 0 {
			_ = c.Error(ierr.ErrNotFound)
			return
		}
		c.Redirect(http.StatusFound, "/swagger/"+groups[len(groups)-1]+"/index.html")
	})

	r.GET("/swagger/:group/*any", func(c *gin.Context) {
		group := c.Param("group")

		if c.Param("any") == DocumentFile {
			raw, err := g.JSON(group)
			if err != nil {
				if errors.Is(err, ErrUnknownGroup) {
					_ = c.Error(ierr.ErrNotFound)
					return
				}
				log.Error("Failed to generate swagger document", zap.String("group", group), zap.Error(err))
				_ = c.Error(err)
				return
			}
			c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
			return
		}

		if !ui {
			_ = c.Error(ierr.ErrNotFound)
			return
		}
		if _, ok := g.collector.Versions().Lookup(group); !ok {
			_ = c.Error(ierr.ErrNotFound)
			return
		}

		uiMu.Lock()
		h := uiFor(group)
		uiMu.Unlock()
		h(c)
	})

	log.Info("Swagger documents mounted", zap.Strings("groups", g.Groups()), zap.Bool("ui", ui))
}
