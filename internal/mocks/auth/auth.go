// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/target/attendance-gateway/internal/observability/audit"
	"github.com/target/attendance-gateway/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.SessionStore  = (*SessionStore)(nil)
	_ ports.SessionHandle = (*SessionHandle)(nil)
	_ audit.Sink          = (*RecordingSink)(nil)
)

// ErrInjected is the default failure returned by fault hooks.
var ErrInjected = errors.New("injected failure")

// Op names a SessionHandle method for fault injection.
type Op string

const (
	OpGet      Op = "get"
	OpSet      Op = "set"
	OpSetMany  Op = "set_many"
	OpReplace  Op = "replace"
	OpSnapshot Op = "snapshot"
	OpClear    Op = "clear"
)

// SessionStore is an in-memory session store that can fail on demand and
// records which operations ran. It is safe for concurrent use.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]map[string]string
	failures map[Op]error
	calls    []Call
}

// Call records one handle operation.
type Call struct {
	ID string
	Op Op
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]map[string]string),
		failures: make(map[Op]error),
	}
}

// Seed installs values for id, replacing anything there.
func (s *SessionStore) Seed(id string, values map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = maps.Clone(values)
}

// Values returns a copy of the stored fields for id, or nil.
func (s *SessionStore) Values(id string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.sessions[id]; ok {
		return maps.Clone(v)
	}
	return nil
}

// FailOn makes every subsequent op return err (ErrInjected when nil).
func (s *SessionStore) FailOn(op Op, err error) {
	if err == nil {
		err = ErrInjected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// Calls returns the recorded operations in order.
func (s *SessionStore) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Writes counts recorded mutating operations.
func (s *SessionStore) Writes() int {
	n := 0
	for _, c := range s.Calls() {
		switch c.Op {
		case OpSet, OpSetMany, OpReplace, OpClear:
			n++
		}
	}
	return n
}

func (s *SessionStore) Handle(id string) ports.SessionHandle {
	return &SessionHandle{store: s, id: id}
}

// begin records the call and returns the injected failure, if any.
// The caller must hold no lock; on success the lock is held on return.
func (s *SessionStore) begin(id string, op Op) error {
	s.mu.Lock()
	s.calls = append(s.calls, Call{ID: id, Op: op})
	if err := s.failures[op]; err != nil {
		s.mu.Unlock()
		return err
	}
	return nil
}

// SessionHandle is bound to one id of a SessionStore.
type SessionHandle struct {
	store *SessionStore
	id    string
}

func (h *SessionHandle) ID() string { return h.id }

func (h *SessionHandle) Get(_ context.Context, key string) (string, bool, error) {
	if err := h.store.begin(h.id, OpGet); err != nil {
		return "", false, err
	}
	defer h.store.mu.Unlock()
	v, ok := h.store.sessions[h.id][key]
	return v, ok, nil
}

func (h *SessionHandle) Set(_ context.Context, key, value string) error {
	if err := h.store.begin(h.id, OpSet); err != nil {
		return err
	}
	defer h.store.mu.Unlock()
	h.fields()[key] = value
	return nil
}

func (h *SessionHandle) SetMany(_ context.Context, values map[string]string) error {
	if err := h.store.begin(h.id, OpSetMany); err != nil {
		return err
	}
	defer h.store.mu.Unlock()
	maps.Copy(h.fields(), values)
	return nil
}

func (h *SessionHandle) Replace(_ context.Context, values map[string]string) error {
	if err := h.store.begin(h.id, OpReplace); err != nil {
		return err
	}
	defer h.store.mu.Unlock()
	h.store.sessions[h.id] = maps.Clone(values)
	return nil
}

func (h *SessionHandle) Snapshot(_ context.Context) (map[string]string, error) {
	if err := h.store.begin(h.id, OpSnapshot); err != nil {
		return nil, err
	}
	defer h.store.mu.Unlock()
	out := maps.Clone(h.store.sessions[h.id])
	if out == nil {
		out = map[string]string{}
	}
	return out, nil
}

func (h *SessionHandle) Clear(_ context.Context) error {
	if err := h.store.begin(h.id, OpClear); err != nil {
		return err
	}
	defer h.store.mu.Unlock()
	delete(h.store.sessions, h.id)
	return nil
}

// fields returns the mutable field map; the store lock must be held.
func (h *SessionHandle) fields() map[string]string {
	m, ok := h.store.sessions[h.id]
	if !ok {
		m = make(map[string]string)
		h.store.sessions[h.id] = m
	}
	return m
}

// RecordingSink keeps every emitted security event.
type RecordingSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *RecordingSink) Emit(_ context.Context, e audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *RecordingSink) Events() []audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]audit.Event(nil), r.events...)
}

// Types returns the recorded event types in order.
func (r *RecordingSink) Types() []audit.EventType {
	var out []audit.EventType
	for _, e := range r.Events() {
		out = append(out, e.EventType)
	}
	return out
}
