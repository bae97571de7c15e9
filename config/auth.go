package config

import (
	"strings"
	"time"
)

// Session store backends.
const (
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

// SessionConfig controls session storage and lifetime.
type SessionConfig struct {
	// Store selects the backend: "redis" or "memory". Memory is only honoured in dev mode.
	Store string `env:"SESSION_STORE" envDefault:"redis"`

	// CookieName is the name of the session id cookie.
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"gw_session"`

	// TTL is the sliding inactivity window applied at login and on significant pages.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`

	// MaxLifetime bounds how long an untouched session key survives in the store.
	MaxLifetime time.Duration `env:"SESSION_MAX_LIFETIME" envDefault:"12h"`

	// KeyPrefix namespaces session keys in Redis.
	KeyPrefix string `env:"SESSION_KEY_PREFIX" envDefault:"session:"`

	// OnboardingRefresh is how long a positive onboarding check is trusted
	// before the identity service is asked again.
	OnboardingRefresh time.Duration `env:"SESSION_ONBOARDING_REFRESH" envDefault:"5m"`
}

// Sanitize applies guardrails to session configuration values.
func (c *SessionConfig) Sanitize(isDev bool) {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	if c.Store != SessionStoreMemory || !isDev {
		c.Store = SessionStoreRedis
	}
	if c.CookieName = strings.TrimSpace(c.CookieName); c.CookieName == "" {
		c.CookieName = "gw_session"
	}
	if c.TTL <= 0 {
		c.TTL = 30 * time.Minute
	}
	if c.MaxLifetime < c.TTL {
		c.MaxLifetime = c.TTL
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "session:"
	}
	if c.OnboardingRefresh < 0 {
		c.OnboardingRefresh = 0
	}
}

// IdentityConfig points the gateway at the identity/attendance service.
type IdentityConfig struct {
	// BaseURL of the identity service API, e.g. "https://identity.example.edu/api".
	BaseURL string `env:"IDENTITY_BASE_URL"`

	// Timeout per request. Zero keeps the transport default (no client-side deadline).
	Timeout time.Duration `env:"IDENTITY_TIMEOUT" envDefault:"0s"`
}

// Sanitize applies guardrails to identity configuration values.
func (c *IdentityConfig) Sanitize() {
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	if c.Timeout < 0 {
		c.Timeout = 0
	}
}

// OTPConfig controls throttling of OTP issuance endpoints.
type OTPConfig struct {
	// SendRateLimit is the number of send/resend requests allowed per client IP
	// within SendRateWindow. Zero disables throttling.
	SendRateLimit  int           `env:"OTP_SEND_RATE_LIMIT"  envDefault:"5"`
	SendRateWindow time.Duration `env:"OTP_SEND_RATE_WINDOW" envDefault:"1m"`
}

// Sanitize applies guardrails to OTP configuration values.
func (c *OTPConfig) Sanitize() {
	if c.SendRateLimit < 0 {
		c.SendRateLimit = 0
	}
	if c.SendRateWindow <= 0 {
		c.SendRateWindow = time.Minute
	}
}

// RateLimited reports whether OTP send endpoints are throttled.
func (c OTPConfig) RateLimited() bool { return c.SendRateLimit > 0 }
