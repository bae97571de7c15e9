package httpx

import (
	"context"

	domainauth "github.com/target/attendance-gateway/internal/domain/auth"
	"github.com/target/attendance-gateway/internal/ports"
)

// Unexported context key types avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same keys.
type (
	handleKey  struct{}
	sessionKey struct{}
	viewKey    struct{}
)

// SetHandleInContext returns a child context carrying the caller's session handle.
func SetHandleInContext(ctx context.Context, h ports.SessionHandle) context.Context {
	if h == nil {
		return ctx
	}
	return context.WithValue(ctx, handleKey{}, h)
}

// HandleFromContext returns the session handle installed by the Sessions middleware.
func HandleFromContext(ctx context.Context) (ports.SessionHandle, bool) {
	h, ok := ctx.Value(handleKey{}).(ports.SessionHandle)
	return h, ok && h != nil
}

// SetSessionInContext returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSessionFromContext returns the session loaded by a guard.
func GetSessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	if s, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && s != nil {
		return s, true
	}
	return nil, false
}

// SetViewInContext stores the presentation context built by a guard.
func SetViewInContext(ctx context.Context, v *ViewContext) context.Context {
	if v == nil {
		return ctx
	}
	return context.WithValue(ctx, viewKey{}, v)
}

// ViewFromContext returns the presentation context, or an empty one.
func ViewFromContext(ctx context.Context) *ViewContext {
	if v, ok := ctx.Value(viewKey{}).(*ViewContext); ok && v != nil {
		return v
	}
	return &ViewContext{}
}
