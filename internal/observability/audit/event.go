// Package audit records security events raised by the access guards and the
// authentication flows, and dispatches them asynchronously to sinks.
package audit

import (
	"context"
	"log/slog"
	"time"
)

// EventType names a security-relevant occurrence.
type EventType string

const (
	EventUnauthenticatedAccess   EventType = "unauthenticated_access"
	EventRoleViolation           EventType = "role_violation"
	EventSessionExpired          EventType = "session_expired"
	EventOnboardingBypassAttempt EventType = "onboarding_bypass_attempt"
	EventLogout                  EventType = "logout"
	EventLoginSuccess            EventType = "login_success"
	EventLoginFailure            EventType = "login_failure"
)

// AnonymousActor is recorded when no authenticated email is known.
const AnonymousActor = "Anonymous"

// Event is one security event record.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType EventType         `json:"event_type"`
	Actor     string            `json:"actor"`
	IP        string            `json:"ip,omitempty"`
	UserAgent string            `json:"user_agent,omitempty"`
	Path      string            `json:"path,omitempty"`
	Role      string            `json:"role,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Normalize fills the timestamp and actor defaults.
func (e Event) Normalize(now time.Time) Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	e.Timestamp = e.Timestamp.UTC()
	if e.Actor == "" {
		e.Actor = AnonymousActor
	}
	return e
}

// Sink receives emitted security events.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// LogSink writes each event as a structured log record.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Emit(ctx context.Context, e Event) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []slog.Attr{
		slog.String("event_type", string(e.EventType)),
		slog.String("actor", e.Actor),
		slog.String("ip", e.IP),
		slog.String("user_agent", e.UserAgent),
		slog.Time("timestamp", e.Timestamp),
	}
	if e.Path != "" {
		attrs = append(attrs, slog.String("path", e.Path))
	}
	if e.Role != "" {
		attrs = append(attrs, slog.String("role", e.Role))
	}
	for k, v := range e.Metadata {
		attrs = append(attrs, slog.String("meta."+k, v))
	}
	logger.LogAttrs(ctx, slog.LevelWarn, "security event", attrs...)
}

// MultiSink fans an event out to every sink in order.
type MultiSink []Sink

func (m MultiSink) Emit(ctx context.Context, e Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(ctx, e)
		}
	}
}
