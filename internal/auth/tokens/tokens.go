// Package tokens reads console access tokens without verifying them. The
// upstream API owns signing keys; the console only needs the expiry and the
// tenant/user hints to decide when to refresh.
package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields the console reads from an access token.
type Claims struct {
	UserID   string `json:"user_id,omitempty"`
	TenantID string `json:"tenant_id,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ErrOpaque is returned for tokens that are not JWTs.
var ErrOpaque = errors.New("token is not a JWT")

var parser = jwt.NewParser()

// Inspect decodes the claims of a JWT without checking its signature.
func Inspect(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrOpaque
	}
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, errors.Join(ErrOpaque, err)
	}
	return claims, nil
}

// ExpiresAt returns the exp claim. ok is false for opaque tokens and JWTs
// without exp.
func ExpiresAt(token string) (time.Time, bool) {
	claims, err := Inspect(token)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether token carries an exp at or before now.
// Tokens without an expiry never count as expired.
func Expired(token string, now time.Time) bool {
	exp, ok := ExpiresAt(token)
	if !ok {
		return false
	}
	return !now.Before(exp)
}
