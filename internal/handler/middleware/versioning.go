package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/makkenzo/gdb-api/internal/apiversion"
)

// ReportVersions advertises the supported and deprecated API versions on every response.
func ReportVersions(versions *apiversion.Set) gin.HandlerFunc {
	return func(c *gin.Context) {
		if supported := versions.Supported(); len(supported) > 0 {
			c.Header(apiversion.HeaderSupported, apiversion.Join(supported))
		}
		if deprecated := versions.Deprecated(); len(deprecated) > 0 {
			c.Header(apiversion.HeaderDeprecated, apiversion.Join(deprecated))
		}
		c.Next()
	}
}
