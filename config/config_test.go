package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("IDENTITY_BASE_URL", "https://identity.example.edu/api")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, SessionStoreRedis, cfg.Session.Store)
	assert.Equal(t, "gw_session", cfg.Session.CookieName)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 12*time.Hour, cfg.Session.MaxLifetime)
	assert.Equal(t, time.Duration(0), cfg.Identity.Timeout)
	assert.Equal(t, 5, cfg.OTP.SendRateLimit)
	assert.True(t, cfg.OTP.RateLimited())
	assert.Equal(t, AuditSinkLog, cfg.Observability.Audit.Sink)
	assert.Equal(t, "localhost:6379", cfg.Redis.URI)
	assert.True(t, cfg.NeedsRedis())
	assert.False(t, cfg.NeedsPostgres())
}

func TestSessionConfig_MemoryStoreOnlyInDev(t *testing.T) {
	c := SessionConfig{Store: "Memory"}
	c.Sanitize(false)
	assert.Equal(t, SessionStoreRedis, c.Store)

	c = SessionConfig{Store: "memory"}
	c.Sanitize(true)
	assert.Equal(t, SessionStoreMemory, c.Store)
}

func TestSessionConfig_Guardrails(t *testing.T) {
	c := SessionConfig{TTL: -time.Second, MaxLifetime: time.Minute, OnboardingRefresh: -1}
	c.Sanitize(false)
	assert.Equal(t, 30*time.Minute, c.TTL)
	assert.Equal(t, 30*time.Minute, c.MaxLifetime, "max lifetime never shorter than the sliding window")
	assert.Equal(t, "gw_session", c.CookieName)
	assert.Equal(t, "session:", c.KeyPrefix)
	assert.Zero(t, c.OnboardingRefresh)
}

func TestOTPConfig_Sanitize(t *testing.T) {
	c := OTPConfig{SendRateLimit: -3}
	c.Sanitize()
	assert.False(t, c.RateLimited())
	assert.Equal(t, time.Minute, c.SendRateWindow)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("IDENTITY_TIMEOUT", "15s")
	t.Setenv("AUDIT_SINK", "Postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("REDIS_USE_CLUSTER", "true")
	t.Setenv("REDIS_CLUSTER_NODES", "r1:6379,r2:6379")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, 45*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 15*time.Second, cfg.Identity.Timeout)
	assert.True(t, cfg.NeedsPostgres())
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, []string{"r1:6379", "r2:6379"}, cfg.Redis.ClusterNodes)
}

func TestDetectDevModeFromAppEnv(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	cfg := AppConfig{}
	cfg.Sanitize()
	assert.True(t, cfg.IsDev)
}
