package bootstrap

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/gdb-api/internal/apiversion"
	"github.com/makkenzo/gdb-api/internal/config"
	"github.com/makkenzo/gdb-api/internal/ierr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func TestModules_GraphIsComplete(t *testing.T) {
	require.NoError(t, fx.ValidateApp(Modules("")))
}

func testEngine(t *testing.T, cfg *config.Config) (*gin.Engine, *apiversion.Set) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := newEngine(cfg, zap.NewNop())
	versions := apiversion.NewSet()
	useVersioning(router, versions)
	require.NoError(t, useCORS(router, &cfg.CORS, zap.NewNop()))
	return router, versions
}

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "gdb-api", Environment: config.EnvironmentDevelopment},
		CORS:   config.CORSConfig{Policy: "AllowAll"},
		Errors: config.ErrorsConfig{ExposeMessages: true},
	}
}

func TestEngine_UnknownRoutesAndMethods(t *testing.T) {
	router, versions := testEngine(t, testConfig())
	versions.Add(apiV1, true)
	versions.Add(apiV2, false)
	router.GET("/api/v2/things", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	tests := []struct {
		name   string
		method string
		path   string
		status int
		code   string
	}{
		{name: "known route", method: http.MethodGet, path: "/api/v2/things", status: http.StatusNoContent},
		{name: "wrong method", method: http.MethodDelete, path: "/api/v2/things", status: http.StatusMethodNotAllowed, code: ierr.CodeNotFound},
		{name: "unknown version", method: http.MethodGet, path: "/api/v9/things", status: http.StatusNotFound, code: ierr.CodeNotFound},
		{name: "unknown path", method: http.MethodGet, path: "/nowhere", status: http.StatusNotFound, code: ierr.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "2.0", w.Header().Get(apiversion.HeaderSupported))
			assert.Equal(t, "1.0", w.Header().Get(apiversion.HeaderDeprecated))
			if tt.code == "" {
				return
			}
			var body struct {
				Code string `json:"code"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestEngine_UnknownCORSPolicy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := newEngine(testConfig(), zap.NewNop())
	err := useCORS(router, &config.CORSConfig{Policy: "Whatever"}, zap.NewNop())
	assert.Error(t, err)
}

func TestAccessLogFormatter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecasts", nil)
	req.Header.Set("User-Agent", "test-agent")

	line := accessLogFormatter(gin.LogFormatterParams{
		Request:    req,
		TimeStamp:  time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
		StatusCode: http.StatusOK,
		Latency:    time.Millisecond,
		ClientIP:   "10.0.0.1",
		Method:     http.MethodGet,
		Path:       "/api/v1/forecasts",
	})

	assert.True(t, strings.HasPrefix(line, "10.0.0.1 - [Thu, 02 May 2024 10:00:00 UTC]"))
	assert.Contains(t, line, `"GET /api/v1/forecasts HTTP/1.1 200 1ms "test-agent"`)
	assert.True(t, strings.HasSuffix(line, "\n"))
}
