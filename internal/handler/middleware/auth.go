package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/gdb-api/internal/ierr"
	"github.com/makkenzo/gdb-api/internal/service"
	"go.uber.org/zap"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
	claimsContextKey    = "authClaims"
	tokenContextKey     = "authToken"
)

type TokenValidator interface {
	Validate(rawToken string) (*service.Claims, error)
}

// Authenticate requires a valid bearer token and stores its claims in the context.
func Authenticate(tokens TokenValidator, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("AuthMiddleware")
	return func(c *gin.Context) {
		authHeader := c.GetHeader(authorizationHeader)
		if authHeader == "" {
			log.Debug("Authorization header is missing")
			challenge(c, fmt.Errorf("%w: authorization header required", ierr.ErrUnauthorized))
			return
		}

		if len(authHeader) < len(bearerPrefix) || !strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			log.Debug("Authorization header format is invalid")
			challenge(c, fmt.Errorf("%w: invalid authorization header format", ierr.ErrUnauthorized))
			return
		}

		tokenString := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if tokenString == "" {
			log.Debug("Token is missing after Bearer prefix")
			challenge(c, fmt.Errorf("%w: token missing", ierr.ErrUnauthorized))
			return
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			log.Debug("Token validation failed", zap.Error(err))
			c.Header("WWW-Authenticate", `Bearer error="invalid_token"`)
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(claimsContextKey, claims)
		c.Set(tokenContextKey, tokenString)
		c.Next()
	}
}

func challenge(c *gin.Context, err error) {
	c.Header("WWW-Authenticate", "Bearer")
	_ = c.Error(err)
	c.Abort()
}

// RequireRoles admits a principal holding any one of roles. It must run after Authenticate.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			_ = c.Error(fmt.Errorf("%w: no authenticated principal", ierr.ErrUnauthorized))
			c.Abort()
			return
		}
		if len(roles) == 0 {
			c.Next()
			return
		}
		for _, r := range roles {
			if claims.HasRole(r) {
				c.Next()
				return
			}
		}
		_ = c.Error(fmt.Errorf("%w: one of roles %q required", ierr.ErrForbidden, roles))
		c.Abort()
	}
}

func GetClaims(c *gin.Context) *service.Claims {
	value, exists := c.Get(claimsContextKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

func GetToken(c *gin.Context) string {
	return c.GetString(tokenContextKey)
}
