package redis

// Package redis provides Redis-based adapters for the attendance gateway.

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/attendance-gateway/internal/ports"
)

// DefaultMaxLifetime bounds how long an untouched session key survives in Redis.
// Session expiry itself is enforced lazily by the guards; the key TTL only
// reclaims abandoned sessions.
const DefaultMaxLifetime = 12 * time.Hour

// SessionStore keeps each session as a Redis hash keyed by prefix+id.
// Multi-field writes and clears run inside MULTI/EXEC so concurrent requests
// for the same caller never observe partial state.
type SessionStore struct {
	client      redis.UniversalClient
	prefix      string
	maxLifetime time.Duration
}

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStoreOptions groups optional settings for NewSessionStore.
type SessionStoreOptions struct {
	Prefix      string
	MaxLifetime time.Duration
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(client redis.UniversalClient, opts SessionStoreOptions) *SessionStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "session:"
	}
	lifetime := opts.MaxLifetime
	if lifetime <= 0 {
		lifetime = DefaultMaxLifetime
	}
	return &SessionStore{client: client, prefix: prefix, maxLifetime: lifetime}
}

// Handle returns a handle bound to the session id.
func (s *SessionStore) Handle(id string) ports.SessionHandle {
	return &sessionHandle{store: s, id: id, key: s.prefix + id}
}

type sessionHandle struct {
	store *SessionStore
	id    string
	key   string
}

// ErrEmptySessionID is returned when a handle has no session id.
var ErrEmptySessionID = errors.New("session id cannot be empty")

func (h *sessionHandle) ID() string { return h.id }

func (h *sessionHandle) Get(ctx context.Context, key string) (string, bool, error) {
	if h.id == "" {
		return "", false, nil
	}
	v, err := h.store.client.HGet(ctx, h.key, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis hget: %w", err)
	}
	return v, true, nil
}

func (h *sessionHandle) Set(ctx context.Context, key, value string) error {
	return h.SetMany(ctx, map[string]string{key: value})
}

func (h *sessionHandle) SetMany(ctx context.Context, values map[string]string) error {
	if h.id == "" {
		return ErrEmptySessionID
	}
	if len(values) == 0 {
		return nil
	}
	_, err := h.store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, h.key, fieldArgs(values)...)
		pipe.Expire(ctx, h.key, h.store.maxLifetime)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (h *sessionHandle) Replace(ctx context.Context, values map[string]string) error {
	if h.id == "" {
		return ErrEmptySessionID
	}
	_, err := h.store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, h.key)
		if len(values) > 0 {
			pipe.HSet(ctx, h.key, fieldArgs(values)...)
			pipe.Expire(ctx, h.key, h.store.maxLifetime)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis replace session: %w", err)
	}
	return nil
}

func (h *sessionHandle) Snapshot(ctx context.Context) (map[string]string, error) {
	if h.id == "" {
		return map[string]string{}, nil
	}
	m, err := h.store.client.HGetAll(ctx, h.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}
	return m, nil
}

func (h *sessionHandle) Clear(ctx context.Context) error {
	if h.id == "" {
		return nil
	}
	return h.store.client.Del(ctx, h.key).Err()
}

// fieldArgs flattens values into HSET arguments in a stable order.
func fieldArgs(values map[string]string) []any {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(values)*2)
	for _, k := range keys {
		args = append(args, k, values[k])
	}
	return args
}
