package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetSet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	_, found, err := store.Get(ctx, "analysis:1:abc")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "analysis:1:abc", []byte("payload"), time.Minute))

	data, found, err := store.Get(ctx, "analysis:1:abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("payload"), data)
}

func TestMemoryStore_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	value := []byte("original")
	require.NoError(t, store.Set(ctx, "k", value, time.Minute))
	value[0] = 'X'

	data, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))

	data[0] = 'Y'
	again, _, _ := store.Get(ctx, "k")
	assert.Equal(t, "original", string(again))
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 20*time.Millisecond))

	assert.Eventually(t, func() bool {
		_, found, _ := store.Get(ctx, "k")
		return !found
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryStore_DeletePattern(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	for _, key := range []string{"analysis:1:aaa", "analysis:1:bbb", "analysis:12:ccc", "analysis:2:ddd"} {
		require.NoError(t, store.Set(ctx, key, []byte(key), time.Minute))
	}

	deleted, err := store.DeletePattern(ctx, "analysis:1:*")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, found, _ := store.Get(ctx, "analysis:12:ccc")
	assert.True(t, found, "analysis:12 must not match analysis:1:*")
	_, found, _ = store.Get(ctx, "analysis:2:ddd")
	assert.True(t, found)
}

func TestMemoryStore_DeletePattern_Invalid(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	_, err := store.DeletePattern(context.Background(), "analysis:[")
	assert.Error(t, err)
}

func TestMemoryStore_Stats(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	require.NoError(t, store.Set(ctx, "k1", []byte("0123456789"), time.Minute))
	_, _, _ = store.Get(ctx, "k1")
	_, _, _ = store.Get(ctx, "k1")
	_, _, _ = store.Get(ctx, "k1")
	_, _, _ = store.Get(ctx, "missing")

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.Connected)
	assert.Equal(t, BackendMemory, stats.Backend)
	assert.Equal(t, int64(1), stats.Keys)
	assert.Equal(t, int64(3), stats.KeyspaceHits)
	assert.Equal(t, int64(1), stats.KeyspaceMisses)
	assert.InDelta(t, 75.0, stats.HitRate, 1e-9)
	assert.Equal(t, "12 B", stats.UsedMemory)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewMemoryStore(time.Minute)

	_, _, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Set(ctx, "k", nil, time.Minute), context.Canceled)
}

func TestMemoryStore_Flush(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

	store.Flush()

	_, found, _ := store.Get(ctx, "k")
	assert.False(t, found)
}
