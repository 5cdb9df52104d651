package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"platform-registry/internal/domain"
)

// TokenConfig configures the locally issued session tokens.
type TokenConfig struct {
	Secret   string
	Lifetime time.Duration
}

// TokenSigner issues and parses HS256 session tokens. The subject claim
// carries the principal's username.
type TokenSigner struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenSigner creates a signer from the shared secret.
func NewTokenSigner(cfg TokenConfig) (*TokenSigner, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	lifetime := cfg.Lifetime
	if lifetime <= 0 {
		lifetime = 30 * time.Minute
	}
	return &TokenSigner{secret: []byte(cfg.Secret), lifetime: lifetime, now: time.Now}, nil
}

// Issue signs a token for the given username.
func (s *TokenSigner) Issue(username string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns the username it was issued for.
// Any failure, signature, expiry or a missing subject, is reported as an
// authentication error without detail about the cause.
func (s *TokenSigner) Parse(tokenString string) (string, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method == nil || token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return "", domain.ErrUnauthenticated("invalid or expired token")
	}
	claims, ok := tok.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", domain.ErrUnauthenticated("invalid or expired token")
	}
	return claims.Subject, nil
}
