package config

import "strings"

// Security event sinks.
const (
	AuditSinkLog      = "log"
	AuditSinkPostgres = "postgres"
)

// ObservabilityConfig groups configuration for metrics and security events.
type ObservabilityConfig struct {
	Metrics ObservabilityMetricsConfig
	Audit   AuditConfig
}

// Sanitize applies guardrails to observability sub-configs.
func (c *ObservabilityConfig) Sanitize() {
	c.Metrics.Sanitize()
	c.Audit.Sanitize()
}

// ObservabilityMetricsConfig controls emission of metrics to StatsD.
type ObservabilityMetricsConfig struct {
	Enabled       bool   `env:"METRICS_ENABLED"        envDefault:"false"`
	StatsdAddress string `env:"METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	Prefix        string `env:"METRICS_PREFIX"         envDefault:"attendance_gateway"`
}

// Sanitize normalises derived fields and enforces safe defaults.
func (c *ObservabilityMetricsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	if c.StatsdAddress == "" {
		c.Enabled = false
	}
}

// IsEnabled returns true when metrics emission is active after sanitisation.
func (c *ObservabilityMetricsConfig) IsEnabled() bool {
	return c.Enabled && c.StatsdAddress != ""
}

// AuditConfig controls where security events go.
type AuditConfig struct {
	// Sink is "log" (structured log only) or "postgres" (log and persist).
	Sink       string `env:"AUDIT_SINK"        envDefault:"log"`
	BufferSize int    `env:"AUDIT_BUFFER_SIZE" envDefault:"256"`
}

// Sanitize normalises the sink name and buffer size.
func (c *AuditConfig) Sanitize() {
	c.Sink = strings.ToLower(strings.TrimSpace(c.Sink))
	if c.Sink != AuditSinkPostgres {
		c.Sink = AuditSinkLog
	}
	if c.BufferSize <= 0 {
		c.BufferSize = 256
	}
}
