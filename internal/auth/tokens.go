package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Krupsinko/Bookmark/internal/store"
)

// DefaultTokenLifetime is how long an access token stays valid.
const DefaultTokenLifetime = 30 * time.Minute

// ErrInvalidToken covers every reason a bearer token is refused. Callers
// never learn which check failed.
var ErrInvalidToken = errors.New("invalid token")

// TokenConfig configures token signing.
type TokenConfig struct {
	Secret    string
	Algorithm string // HS256, HS384 or HS512
	Lifetime  time.Duration
}

// Claims is the payload of an access token: sub carries the username and
// id the user ID.
type Claims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed access tokens.
type TokenService struct {
	secret   []byte
	method   jwt.SigningMethod
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenService validates cfg and returns a TokenService.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: token secret is required")
	}
	var method jwt.SigningMethod
	switch cfg.Algorithm {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("auth: unsupported signing algorithm %q", cfg.Algorithm)
	}
	lifetime := cfg.Lifetime
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}
	return &TokenService{
		secret:   []byte(cfg.Secret),
		method:   method,
		lifetime: lifetime,
		now:      time.Now,
	}, nil
}

// Issue signs a token for u that expires after the configured lifetime.
func (s *TokenService) Issue(u *store.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: u.ID,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, algorithm and expiry of token and that it
// names a user. Any failure is reported as ErrInvalidToken.
func (s *TokenService) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
