package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMiniRedis creates a test Redis server using miniredis.
func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := &RedisStore{
		client: client,
		logger: zerolog.Nop(),
		ttl:    10 * time.Minute,
	}
	t.Cleanup(func() { _ = store.Close() })

	return mr, store
}

func TestRedisStore_PutGet(t *testing.T) {
	_, store := setupMiniRedis(t)

	store.Put("youtube:abc", []byte(`{"success":true}`))

	val, ok := store.Get("youtube:abc")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"success":true}`), val)

	_, ok = store.Get("youtube:missing")
	assert.False(t, ok)
}

func TestRedisStore_TTL(t *testing.T) {
	mr, store := setupMiniRedis(t)

	store.Put("k", []byte("v"))
	mr.FastForward(10*time.Minute + time.Second)

	_, ok := store.Get("k")
	assert.False(t, ok)
}

func TestRedisStore_Clear(t *testing.T) {
	_, store := setupMiniRedis(t)

	store.Put("a", []byte("1"))
	store.Put("b", []byte("2"))
	store.Clear()

	assert.Equal(t, 0, store.Stats().Size)
}

func TestRedisStore_Stats(t *testing.T) {
	_, store := setupMiniRedis(t)

	store.Put("a", []byte("1"))
	store.Get("a")
	store.Get("missing")

	stats := store.Stats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 10*time.Minute, stats.TTL)
}

func TestRedisStore_HealthCheck(t *testing.T) {
	mr, store := setupMiniRedis(t)

	require.NoError(t, store.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, store.HealthCheck(context.Background()))
}
