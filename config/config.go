package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: session, identity service and OTP configuration
//   - database.go: Redis and Postgres configuration
//   - http.go: HTTP server configuration
//   - observability.go: metrics and security event configuration
type AppConfig struct {
	// IsDev controls development mode behavior (text logs, memory session store allowed).
	// Set IS_DEV=true or APP_ENV=development for development mode.
	IsDev bool `env:"IS_DEV" envDefault:"false"`

	Session  SessionConfig
	Identity IdentityConfig
	OTP      OTPConfig

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	HTTP HTTPConfig

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.detectDevMode()

	c.HTTP.Sanitize()
	c.Session.Sanitize(c.IsDev)
	c.Identity.Sanitize()
	c.OTP.Sanitize()
	c.Observability.Sanitize()
}

// detectDevMode falls back to APP_ENV when IS_DEV is unset.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		appEnv := strings.ToLower(os.Getenv("APP_ENV"))
		c.IsDev = appEnv == "development" || appEnv == "dev"
	}
}

// NeedsRedis reports whether any component is backed by Redis.
func (c *AppConfig) NeedsRedis() bool {
	return c.Session.Store == SessionStoreRedis
}

// NeedsPostgres reports whether any component is backed by Postgres.
func (c *AppConfig) NeedsPostgres() bool {
	return c.Observability.Audit.Sink == AuditSinkPostgres
}
