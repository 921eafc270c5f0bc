package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileValues(t *testing.T) {
	path := writeConfig(t, `
app:
  environment: Development
jwt:
  issuer: gdb-api
  audience: gdb-clients
  secretKey: file-secret
database:
  connectionStringSecretName: GDB_DB_DSN
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "gdb-api", cfg.JWT.Issuer)
	assert.Equal(t, "gdb-clients", cfg.JWT.Audience)
	assert.Equal(t, "file-secret", cfg.JWT.SecretKey)
	assert.Equal(t, "GDB_DB_DSN", cfg.Database.ConnectionStringSecretName)
	assert.True(t, cfg.App.IsDevelopment())

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.JWT.TokenLifetime)
	assert.Equal(t, "AllowAll", cfg.CORS.Policy)
	assert.True(t, cfg.Errors.ExposeMessages)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("JWT_SECRETKEY", "env-secret")
	t.Setenv("JWT_ISSUER", "env-issuer")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.SecretKey)
	assert.Equal(t, "env-issuer", cfg.JWT.Issuer)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.False(t, cfg.App.IsDevelopment())
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	path := writeConfig(t, "jwt:\n  issuer: only-issuer\n")

	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrMissingSecretKey)
}
