package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/makkenzo/gdb-api/internal/config"
	"github.com/makkenzo/gdb-api/internal/domain/user"
	"github.com/makkenzo/gdb-api/internal/ierr"
	"go.uber.org/zap"
)

const TokenTypeBearer = "Bearer"

// Claims is the payload of access tokens issued by TokenService.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

type TokenService struct {
	signingKey []byte
	issuer     string
	audience   string
	lifetime   time.Duration
	timeFunc   func() time.Time
	logger     *zap.Logger
}

type TokenOption func(*TokenService)

// WithTimeFunc replaces the clock used to stamp and validate tokens.
func WithTimeFunc(fn func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.timeFunc = fn
	}
}

func NewTokenService(cfg *config.JWTConfig, logger *zap.Logger, opts ...TokenOption) (*TokenService, error) {
	if cfg.SecretKey == "" {
		return nil, config.ErrMissingSecretKey
	}

	lifetime := cfg.TokenLifetime
	if lifetime <= 0 {
		lifetime = time.Hour
	}

	s := &TokenService{
		signingKey: []byte(cfg.SecretKey),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		lifetime:   lifetime,
		timeFunc:   time.Now,
		logger:     logger.Named("TokenService"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs an HS256 access token for subject and returns it with its expiry.
func (s *TokenService) Issue(subject string, roles []string) (string, time.Time, error) {
	now := s.timeFunc()
	expiresAt := now.Add(s.lifetime)

	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.String("subject", subject), zap.Error(err))
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}

	return signed, expiresAt, nil
}

// Validate checks signature, lifetime (no clock skew) and, when configured, issuer and audience.
func (s *TokenService) Validate(rawToken string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(0),
		jwt.WithTimeFunc(s.timeFunc),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	token, err := jwt.ParseWithClaims(rawToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			s.logger.Debug("Access token expired")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			s.logger.Debug("Access token signature invalid")
		default:
			s.logger.Debug("Access token rejected", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ierr.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ierr.ErrTokenInvalidClaims
	}
	return claims, nil
}

type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

type AuthService struct {
	users  user.Repository
	tokens *TokenService
	logger *zap.Logger
}

func NewAuthService(users user.Repository, tokens *TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger.Named("AuthService"),
	}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*Token, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ierr.ErrUserNotFound) {
			s.logger.Info("Login attempt for unknown user", zap.String("username", username))
			return nil, ierr.ErrInvalidCredentials
		}
		s.logger.Error("Failed to look up user", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !user.CheckPassword(u.PasswordHash, password) {
		s.logger.Info("Invalid password", zap.String("username", username))
		return nil, ierr.ErrInvalidCredentials
	}

	access, expiresAt, err := s.tokens.Issue(u.ID.String(), u.Roles)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", zap.String("username", u.Username), zap.String("user_id", u.ID.String()))
	return &Token{AccessToken: access, TokenType: TokenTypeBearer, ExpiresAt: expiresAt}, nil
}
