package core

import (
	"context"
	"sync"
	"time"
)

// DefaultCacheTTL 未指定 TTL 时缓存项的默认生命周期
const DefaultCacheTTL = time.Hour

// cacheItem 缓存项
type cacheItem struct {
	value     string
	expiresAt time.Time
}

func (item *cacheItem) isExpired(now time.Time) bool {
	return !now.Before(item.expiresAt)
}

// MemoryCache 进程内缓存实现
type MemoryCache struct {
	mu         sync.RWMutex
	items      map[string]*cacheItem
	defaultTTL time.Duration
	now        func() time.Time
}

// NewMemoryCache 创建内存缓存实例，ttl <= 0 的写入使用 DefaultCacheTTL
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithTTL(DefaultCacheTTL)
}

// NewMemoryCacheWithTTL 创建指定默认生命周期的内存缓存
func NewMemoryCacheWithTTL(defaultTTL time.Duration) *MemoryCache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultCacheTTL
	}
	return &MemoryCache{
		items:      make(map[string]*cacheItem),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Get 获取缓存值
func (c *MemoryCache) Get(ctx context.Context, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || item.isExpired(c.now()) {
		return "", false
	}

	return item.value, true
}

// Set 设置缓存值
func (c *MemoryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &cacheItem{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}

	return nil
}

// Delete 删除缓存
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Cleanup 清理过期缓存项（可选，用于定期清理）
func (c *MemoryCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, item := range c.items {
		if item.isExpired(now) {
			delete(c.items, key)
		}
	}
}

var _ Cache = (*MemoryCache)(nil)
