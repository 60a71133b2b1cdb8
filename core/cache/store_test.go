package cache_test

import (
	"context"
	"testing"
	"time"

	"claims-tracker/core/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("MemoryBackend", func(t *testing.T) {
		store, err := cache.New(cache.Config{Backend: cache.BackendMemory})
		require.NoError(t, err)
		assert.IsType(t, &cache.MemoryStore{}, store)
	})

	t.Run("RedisBackend", func(t *testing.T) {
		store, err := cache.New(cache.Config{Backend: cache.BackendRedis, Addr: "localhost:6379"})
		require.NoError(t, err)
		assert.IsType(t, &cache.RedisStore{}, store)
	})

	t.Run("UnknownBackend", func(t *testing.T) {
		_, err := cache.New(cache.Config{Backend: "memcached"})
		assert.Error(t, err)
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("SetGetDelete", func(t *testing.T) {
		store := cache.NewMemoryStore()

		_, ok, err := store.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, store.Set(ctx, "k", "v", 0))
		val, ok, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v", val)

		require.NoError(t, store.Delete(ctx, "k"))
		_, ok, err = store.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)

		// Deleting again is fine.
		require.NoError(t, store.Delete(ctx, "k"))
	})

	t.Run("Expiry", func(t *testing.T) {
		store := cache.NewMemoryStore()

		require.NoError(t, store.Set(ctx, "k", "v", 10*time.Millisecond))
		_, ok, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)

		time.Sleep(20 * time.Millisecond)
		_, ok, err = store.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ZeroTTLNeverExpires", func(t *testing.T) {
		store := cache.NewMemoryStore()

		require.NoError(t, store.Set(ctx, "k", "v", 0))
		time.Sleep(5 * time.Millisecond)
		_, ok, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()

	newStore := func(t *testing.T) (*cache.RedisStore, *miniredis.Miniredis) {
		mr := miniredis.RunT(t)
		return cache.NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
	}

	t.Run("SetGetDelete", func(t *testing.T) {
		store, _ := newStore(t)

		_, ok, err := store.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, store.Set(ctx, "k", "v", 0))
		val, ok, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v", val)

		require.NoError(t, store.Delete(ctx, "k"))
		_, ok, err = store.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Expiry", func(t *testing.T) {
		store, mr := newStore(t)

		require.NoError(t, store.Set(ctx, "k", "v", time.Hour))
		mr.FastForward(2 * time.Hour)

		_, ok, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Ping", func(t *testing.T) {
		store, _ := newStore(t)
		assert.NoError(t, store.Ping(ctx))
	})
}
