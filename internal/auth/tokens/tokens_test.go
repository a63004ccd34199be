package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("upstream-only-key"))
	require.NoError(t, err)
	return token
}

func TestInspect(t *testing.T) {
	token := sign(t, Claims{
		UserID:   "user_1",
		TenantID: "tenant_colombia_1",
		Role:     "owner",
	})

	claims, err := Inspect(token)
	require.NoError(t, err)
	assert.Equal(t, "tenant_colombia_1", claims.TenantID)
	assert.Equal(t, "owner", claims.Role)
}

func TestInspectOpaque(t *testing.T) {
	_, err := Inspect("mock_jwt_token_123")
	assert.ErrorIs(t, err, ErrOpaque)

	_, err = Inspect("")
	assert.ErrorIs(t, err, ErrOpaque)
}

func TestExpiresAt(t *testing.T) {
	exp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token := sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}})

	got, ok := ExpiresAt(token)
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = ExpiresAt(sign(t, Claims{UserID: "u"}))
	assert.False(t, ok, "JWT without exp")
}

func TestExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))}})
	future := sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}})

	assert.True(t, Expired(past, now))
	assert.False(t, Expired(future, now))
	assert.False(t, Expired("opaque", now))
	assert.True(t, Expired(future, now.Add(time.Hour)), "exp instant counts as expired")
}
