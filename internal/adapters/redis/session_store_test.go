package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/attendance-gateway/internal/domain/auth"
	"github.com/target/attendance-gateway/internal/testutil"
)

func TestSessionStore_SetAndGet(t *testing.T) {
	client, _ := testutil.SetupTestRedis(t)
	store := NewSessionStore(client, SessionStoreOptions{})
	ctx := context.Background()

	h := store.Handle("sess-1")
	assert.Equal(t, "sess-1", h.ID())

	_, ok, err := h.Get(ctx, domainauth.KeyEmail)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, h.Set(ctx, domainauth.KeyEmail, "ana@example.edu"))

	v, ok, err := h.Get(ctx, domainauth.KeyEmail)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ana@example.edu", v)
}

func TestSessionStore_SetManyAndSnapshot(t *testing.T) {
	client, mr := testutil.SetupTestRedis(t)
	store := NewSessionStore(client, SessionStoreOptions{MaxLifetime: time.Hour})
	ctx := context.Background()

	h := store.Handle("sess-2")
	require.NoError(t, h.SetMany(ctx, map[string]string{
		domainauth.KeyAuthenticated: "true",
		domainauth.KeyRole:          "student",
	}))

	snap, err := h.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"is_authenticated": "true", "role": "student"}, snap)
	assert.Equal(t, time.Hour, mr.TTL("session:sess-2"))
}

func TestSessionStore_ReplaceDropsOldFields(t *testing.T) {
	client, _ := testutil.SetupTestRedis(t)
	store := NewSessionStore(client, SessionStoreOptions{})
	ctx := context.Background()

	h := store.Handle("sess-3")
	require.NoError(t, h.SetMany(ctx, map[string]string{"redirect_after_login": "/student/profile", "x": "1"}))
	require.NoError(t, h.Replace(ctx, map[string]string{"is_authenticated": "true"}))

	snap, err := h.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"is_authenticated": "true"}, snap)
}

func TestSessionStore_Clear(t *testing.T) {
	client, mr := testutil.SetupTestRedis(t)
	store := NewSessionStore(client, SessionStoreOptions{})
	ctx := context.Background()

	h := store.Handle("sess-4")
	require.NoError(t, h.Set(ctx, "k", "v"))
	require.True(t, mr.Exists("session:sess-4"))

	require.NoError(t, h.Clear(ctx))
	assert.False(t, mr.Exists("session:sess-4"))

	snap, err := h.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap)

	// Clearing twice is not an error.
	require.NoError(t, h.Clear(ctx))
}

func TestSessionStore_CustomPrefix(t *testing.T) {
	client, mr := testutil.SetupTestRedis(t)
	store := NewSessionStore(client, SessionStoreOptions{Prefix: "gw:s:"})

	require.NoError(t, store.Handle("abc").Set(context.Background(), "k", "v"))
	assert.True(t, mr.Exists("gw:s:abc"))
	assert.False(t, mr.Exists("session:abc"))
}

func TestSessionStore_EmptyID(t *testing.T) {
	client, _ := testutil.SetupTestRedis(t)
	store := NewSessionStore(client, SessionStoreOptions{})
	ctx := context.Background()
	h := store.Handle("")

	assert.ErrorIs(t, h.Set(ctx, "k", "v"), ErrEmptySessionID)
	assert.ErrorIs(t, h.Replace(ctx, map[string]string{"k": "v"}), ErrEmptySessionID)
	_, ok, err := h.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, h.Clear(ctx))
}

func TestSessionStore_KeyReclaimedAfterMaxLifetime(t *testing.T) {
	client, mr := testutil.SetupTestRedis(t)
	store := NewSessionStore(client, SessionStoreOptions{MaxLifetime: time.Minute})
	ctx := context.Background()

	h := store.Handle("sess-5")
	require.NoError(t, h.Set(ctx, "k", "v"))
	mr.FastForward(2 * time.Minute)

	_, ok, err := h.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionStore_ConcurrentWritesNeverHalfWritten(t *testing.T) {
	client, _ := testutil.SetupTestRedis(t)
	store := NewSessionStore(client, SessionStoreOptions{})
	ctx := context.Background()

	full := map[string]string{
		domainauth.KeyAuthenticated: "true",
		domainauth.KeyRole:          "student",
		domainauth.KeyAuthToken:     "tok",
		domainauth.KeySessionExpiry: "2030-01-01T00:00:00Z",
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Handle("race").Replace(ctx, full))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Handle("race").Clear(ctx))
		}()
	}
	wg.Wait()

	snap, err := store.Handle("race").Snapshot(ctx)
	require.NoError(t, err)
	if len(snap) != 0 {
		assert.Equal(t, full, snap)
	}
}
