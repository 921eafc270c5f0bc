package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/makkenzo/gdb-api/internal/config"
	"github.com/makkenzo/gdb-api/internal/ierr"
	"github.com/makkenzo/gdb-api/internal/storage/memstorage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret-key-with-enough-length-123"

func newTokenService(t *testing.T, cfg config.JWTConfig, now func() time.Time) *TokenService {
	t.Helper()
	if cfg.SecretKey == "" {
		cfg.SecretKey = testSecret
	}
	s, err := NewTokenService(&cfg, zap.NewNop(), WithTimeFunc(now))
	require.NoError(t, err)
	return s
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService(&config.JWTConfig{}, zap.NewNop())
	assert.ErrorIs(t, err, config.ErrMissingSecretKey)
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := newTokenService(t, config.JWTConfig{Issuer: "gdb", Audience: "clients", TokenLifetime: time.Hour},
		func() time.Time { return now })

	raw, expiresAt, err := s.Issue("user-1", []string{"admin"})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	claims, err := s.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "gdb", claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{"clients"}, claims.Audience)
	assert.True(t, claims.HasRole("admin"))
	assert.NotEmpty(t, claims.ID)
}

func TestTokenService_Validate(t *testing.T) {
	issuedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTokenService(t, config.JWTConfig{Issuer: "gdb", Audience: "clients", TokenLifetime: time.Minute},
		func() time.Time { return issuedAt })
	raw, _, err := issuer.Issue("user-1", nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		cfg  config.JWTConfig
		now  time.Time
		tok  string
	}{
		{
			name: "expired without clock skew",
			cfg:  config.JWTConfig{Issuer: "gdb", Audience: "clients"},
			now:  issuedAt.Add(time.Minute + time.Second),
			tok:  raw,
		},
		{
			name: "wrong issuer",
			cfg:  config.JWTConfig{Issuer: "other", Audience: "clients"},
			now:  issuedAt,
			tok:  raw,
		},
		{
			name: "wrong audience",
			cfg:  config.JWTConfig{Issuer: "gdb", Audience: "others"},
			now:  issuedAt,
			tok:  raw,
		},
		{
			name: "wrong signing key",
			cfg:  config.JWTConfig{Issuer: "gdb", Audience: "clients", SecretKey: "another-secret-key-with-enough-length"},
			now:  issuedAt,
			tok:  raw,
		},
		{
			name: "malformed",
			cfg:  config.JWTConfig{},
			now:  issuedAt,
			tok:  "not-a-token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := tt.now
			s := newTokenService(t, tt.cfg, func() time.Time { return now })

			claims, err := s.Validate(tt.tok)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, ierr.ErrInvalidToken)
		})
	}
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	now := time.Now()
	s := newTokenService(t, config.JWTConfig{}, func() time.Time { return now })

	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = s.Validate(raw)
	assert.ErrorIs(t, err, ierr.ErrInvalidToken)
}

func TestTokenService_RequiresExpiry(t *testing.T) {
	s := newTokenService(t, config.JWTConfig{}, time.Now)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = s.Validate(raw)
	assert.ErrorIs(t, err, ierr.ErrInvalidToken)
}

func TestAuthService_Login(t *testing.T) {
	users, err := memstorage.NewUserStore(&config.AuthConfig{AdminUsername: "admin", AdminPassword: "adminpassword"})
	require.NoError(t, err)
	tokens := newTokenService(t, config.JWTConfig{}, time.Now)
	svc := NewAuthService(users, tokens, zap.NewNop())

	t.Run("valid credentials", func(t *testing.T) {
		tok, err := svc.Login(context.Background(), "admin", "adminpassword")
		require.NoError(t, err)
		assert.Equal(t, TokenTypeBearer, tok.TokenType)

		claims, err := tokens.Validate(tok.AccessToken)
		require.NoError(t, err)
		assert.True(t, claims.HasRole("admin"))
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "admin", "nope")
		assert.ErrorIs(t, err, ierr.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "ghost", "adminpassword")
		assert.ErrorIs(t, err, ierr.ErrInvalidCredentials)
	})
}
