package core

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache 基于 Redis 的缓存实现，多个进程可共享同一份 token
type RedisCache struct {
	client     redis.UniversalClient
	prefix     string
	defaultTTL time.Duration
	logger     *slog.Logger
}

type RedisCacheConfig struct {
	Client redis.UniversalClient
	// Prefix 追加在所有 key 之前，为空时不加前缀
	Prefix string
	// DefaultTTL ttl <= 0 的写入使用的生命周期，默认 DefaultCacheTTL
	DefaultTTL time.Duration
	Logger     *slog.Logger
}

func NewRedisCache(cfg RedisCacheConfig) (*RedisCache, error) {
	if cfg.Client == nil {
		return nil, errors.New("redis client is required")
	}
	defaultTTL := cfg.DefaultTTL
	if defaultTTL <= 0 {
		defaultTTL = DefaultCacheTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{
		client:     cfg.Client,
		prefix:     cfg.Prefix,
		defaultTTL: defaultTTL,
		logger:     logger,
	}, nil
}

// Get 读取缓存，Redis 故障按未命中处理
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "redis cache get failed", slog.Any("error", err))
		}
		return "", false
	}
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

var _ Cache = (*RedisCache)(nil)
