package service

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpiry returns the exp claim of a JWT bearer. The signature is not
// checked: the identity service owns the token and validates it on every call.
// Opaque tokens and tokens without exp report ok=false.
func tokenExpiry(token string) (time.Time, bool) {
	if strings.Count(token, ".") != 2 {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// capExpiry returns the earlier of want and the token's own expiry. A token
// that has already expired yields its past expiry.
func capExpiry(want time.Time, token string) time.Time {
	exp, ok := tokenExpiry(token)
	if !ok || !exp.Before(want) {
		return want
	}
	return exp.UTC()
}
