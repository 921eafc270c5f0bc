package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/makkenzo/gdb-api/internal/apiversion"
	"github.com/makkenzo/gdb-api/internal/config"
)

const (
	PolicyAllowAll   = "AllowAll"
	PolicyRestricted = "Restricted"
)

var ErrUnknownCORSPolicy = errors.New("unknown cors policy")

// allowedHeaders is listed explicitly: a "*" in Access-Control-Allow-Headers never covers
// Authorization.
var allowedHeaders = []string{
	"Origin",
	"Content-Type",
	"Content-Length",
	"Accept",
	"Authorization",
	"X-Requested-With",
}

// CORS builds the middleware for the configured named policy.
func CORS(cfg *config.CORSConfig) (gin.HandlerFunc, error) {
	var corsConfig cors.Config

	switch cfg.Policy {
	case PolicyAllowAll, "":
		corsConfig = cors.Config{
			AllowAllOrigins: true,
			AllowMethods: []string{
				http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
				http.MethodDelete, http.MethodHead, http.MethodOptions,
			},
			AllowHeaders:  allowedHeaders,
			ExposeHeaders: []string{apiversion.HeaderSupported, apiversion.HeaderDeprecated},
			MaxAge:        12 * time.Hour,
		}
	case PolicyRestricted:
		corsConfig = cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowedHeaders,
			ExposeHeaders:    []string{"Content-Length", apiversion.HeaderSupported, apiversion.HeaderDeprecated},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCORSPolicy, cfg.Policy)
	}

	if err := corsConfig.Validate(); err != nil {
		return nil, fmt.Errorf("cors policy %q: %w", cfg.Policy, err)
	}
	return cors.New(corsConfig), nil
}
