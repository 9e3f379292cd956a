package core

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T, prefix string) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache, err := NewRedisCache(RedisCacheConfig{Client: client, Prefix: prefix})
	require.NoError(t, err)
	return cache, mr
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	cache, mr := newTestRedisCache(t, "app:")
	ctx := context.Background()

	_, ok := cache.Get(ctx, "feishu.access_token.cli_1.secret")
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "feishu.access_token.cli_1.secret", "t-123", 2*time.Hour))
	assert.True(t, mr.Exists("app:feishu.access_token.cli_1.secret"))
	assert.Equal(t, 2*time.Hour, mr.TTL("app:feishu.access_token.cli_1.secret"))

	got, ok := cache.Get(ctx, "feishu.access_token.cli_1.secret")
	assert.True(t, ok)
	assert.Equal(t, "t-123", got)

	require.NoError(t, cache.Delete(ctx, "feishu.access_token.cli_1.secret"))
	_, ok = cache.Get(ctx, "feishu.access_token.cli_1.secret")
	assert.False(t, ok)

	require.NoError(t, cache.Delete(ctx, "missing"))
}

func TestRedisCache_Expiration(t *testing.T) {
	cache, mr := newTestRedisCache(t, "")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", "value", time.Minute))
	mr.FastForward(time.Minute + time.Second)

	_, ok := cache.Get(ctx, "key")
	assert.False(t, ok)
}

func TestRedisCache_DefaultTTL(t *testing.T) {
	cache, mr := newTestRedisCache(t, "")

	require.NoError(t, cache.Set(context.Background(), "key", "value", 0))
	assert.Equal(t, DefaultCacheTTL, mr.TTL("key"))
}

func TestRedisCache_UnavailableIsMiss(t *testing.T) {
	cache, mr := newTestRedisCache(t, "")
	mr.Close()

	_, ok := cache.Get(context.Background(), "key")
	assert.False(t, ok)
	assert.Error(t, cache.Set(context.Background(), "key", "value", time.Minute))
}

func TestNewRedisCache_RequiresClient(t *testing.T) {
	_, err := NewRedisCache(RedisCacheConfig{})
	assert.Error(t, err)
}
