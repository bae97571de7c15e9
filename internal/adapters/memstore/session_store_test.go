package memstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_Lifecycle(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	h := store.Handle("a")

	require.NoError(t, h.SetMany(ctx, map[string]string{"role": "student", "verified": "true"}))
	v, ok, err := h.Get(ctx, "role")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "student", v)

	require.NoError(t, h.Replace(ctx, map[string]string{"role": "faculty"}))
	snap, err := h.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"role": "faculty"}, snap)

	require.NoError(t, h.Clear(ctx))
	assert.Equal(t, 0, store.Len())
}

func TestSessionStore_SnapshotIsACopy(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	h := store.Handle("a")
	require.NoError(t, h.Set(ctx, "k", "v"))

	snap, err := h.Snapshot(ctx)
	require.NoError(t, err)
	snap["k"] = "changed"

	v, _, err := h.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestSessionStore_HandlesAreIsolated(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	require.NoError(t, store.Handle("a").Set(ctx, "k", "1"))

	_, ok, err := store.Handle("b").Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionStore_EmptyID(t *testing.T) {
	h := NewSessionStore().Handle("")
	assert.ErrorIs(t, h.Set(context.Background(), "k", "v"), ErrEmptySessionID)
}

func TestSessionStore_ConcurrentReplaceAndClear(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	full := map[string]string{"is_authenticated": "true", "auth_token": "t", "role": "student"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); _ = store.Handle("s").Replace(ctx, full) }()
		go func() { defer wg.Done(); _ = store.Handle("s").Clear(ctx) }()
	}
	wg.Wait()

	snap, err := store.Handle("s").Snapshot(ctx)
	require.NoError(t, err)
	if len(snap) != 0 {
		assert.Equal(t, full, snap)
	}
}
