// Package memstore provides an in-process session store for development and tests.
package memstore

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/target/attendance-gateway/internal/ports"
)

// ErrEmptySessionID is returned when a handle has no session id.
var ErrEmptySessionID = errors.New("session id cannot be empty")

// SessionStore keeps sessions in a map guarded by a single mutex.
// Sessions are lost on restart and are not shared between processes.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]map[string]string
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]map[string]string)}
}

// Handle returns a handle bound to the session id.
func (s *SessionStore) Handle(id string) ports.SessionHandle {
	return &handle{store: s, id: id}
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

type handle struct {
	store *SessionStore
	id    string
}

func (h *handle) ID() string { return h.id }

func (h *handle) Get(_ context.Context, key string) (string, bool, error) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	v, ok := h.store.sessions[h.id][key]
	return v, ok, nil
}

func (h *handle) Set(ctx context.Context, key, value string) error {
	return h.SetMany(ctx, map[string]string{key: value})
}

func (h *handle) SetMany(_ context.Context, values map[string]string) error {
	if h.id == "" {
		return ErrEmptySessionID
	}
	if len(values) == 0 {
		return nil
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	sess, ok := h.store.sessions[h.id]
	if !ok {
		sess = make(map[string]string, len(values))
		h.store.sessions[h.id] = sess
	}
	maps.Copy(sess, values)
	return nil
}

func (h *handle) Replace(_ context.Context, values map[string]string) error {
	if h.id == "" {
		return ErrEmptySessionID
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	if len(values) == 0 {
		delete(h.store.sessions, h.id)
		return nil
	}
	h.store.sessions[h.id] = maps.Clone(values)
	return nil
}

func (h *handle) Snapshot(_ context.Context) (map[string]string, error) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	sess := h.store.sessions[h.id]
	if sess == nil {
		return map[string]string{}, nil
	}
	return maps.Clone(sess), nil
}

func (h *handle) Clear(_ context.Context) error {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	delete(h.store.sessions, h.id)
	return nil
}
