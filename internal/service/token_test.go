package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "42"}
	if !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	got, ok := tokenExpiry(signedToken(t, exp))
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = tokenExpiry(signedToken(t, time.Time{}))
	assert.False(t, ok, "no exp claim")

	_, ok = tokenExpiry("opaque-token-value")
	assert.False(t, ok)

	_, ok = tokenExpiry("a.b.c")
	assert.False(t, ok)
}

func TestCapExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	want := now.Add(30 * time.Minute)

	tests := []struct {
		name  string
		token string
		exp   time.Time
	}{
		{"opaque token keeps window", "opaque", want},
		{"token outlives window", signedToken(t, now.Add(time.Hour)), want},
		{"token expires first", signedToken(t, now.Add(10*time.Minute)), now.Add(10 * time.Minute)},
		{"already expired token", signedToken(t, now.Add(-time.Minute)), now.Add(-time.Minute)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.exp.Equal(capExpiry(want, tt.token)))
		})
	}
}
