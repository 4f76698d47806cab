// Package auth provides session-credential tooling: browser-based login,
// optional OS-keyring token storage, and JWT claim inspection.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the session-token claims the CLI cares about.
type Claims struct {
	Subject   string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token's expiry has passed. Tokens without an
// expiry never expire.
func (c *Claims) Expired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}

// Inspect parses a session token WITHOUT verification; the CLI holds no
// signing key and only peeks at claims for display and expiry warnings.
func Inspect(token string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("failed to extract claims from session token")
	}

	claims := &Claims{}
	if sub, err := mapClaims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}
