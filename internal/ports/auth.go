// Package ports defines interfaces (hexagonal ports) for session and identity behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"
)

// SessionStore hands out handles to per-caller session state.
type SessionStore interface {
	// Handle binds a capability to the session identified by id.
	// No I/O happens until a handle method is called.
	Handle(id string) SessionHandle
}

// SessionHandle reads and writes the fields of a single session.
// Each method is atomic with respect to other operations on the same session:
// callers never observe a partially written or partially cleared session.
type SessionHandle interface {
	// ID returns the session identifier the handle is bound to.
	ID() string
	// Get returns the field value and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes a single field.
	Set(ctx context.Context, key, value string) error
	// SetMany writes all fields in one atomic operation.
	SetMany(ctx context.Context, values map[string]string) error
	// Replace discards every existing field and writes values in one atomic operation.
	Replace(ctx context.Context, values map[string]string) error
	// Snapshot returns all fields. A missing session yields an empty map.
	Snapshot(ctx context.Context) (map[string]string, error)
	// Clear destroys the session.
	Clear(ctx context.Context) error
}
