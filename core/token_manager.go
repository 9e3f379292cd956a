package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

type TokenFetchResult struct {
	Token     string
	ExpiresIn int // 秒
}

type TokenFetcher func(ctx context.Context) (TokenFetchResult, error)

type TokenManagerConfig struct {
	Cache    Cache
	CacheKey string
	Fetcher  TokenFetcher
	Logger   *slog.Logger
	Metrics  *Metrics
	// ExpireBufferSeconds 从平台返回的 expire 中扣除的秒数，0 表示原样使用
	ExpireBufferSeconds int
	// SingleFlight 为 true 时并发的缓存未命中只触发一次获取；
	// 默认关闭，并发调用方各自获取，后写入者覆盖缓存
	SingleFlight bool
	// OnToken 每次 GetToken 成功后回调，fromCache 表示是否命中缓存
	OnToken func(ctx context.Context, fromCache bool)
}

type TokenManager struct {
	cache               Cache
	cacheKey            string
	fetcher             TokenFetcher
	logger              *slog.Logger
	metrics             *Metrics
	expireBufferSeconds int
	singleFlight        bool
	onToken             func(ctx context.Context, fromCache bool)

	group singleflight.Group
}

func NewTokenManager(cfg TokenManagerConfig) (*TokenManager, error) {
	if cfg.Cache == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if cfg.CacheKey == "" {
		return nil, fmt.Errorf("cache key is required")
	}
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if cfg.ExpireBufferSeconds < 0 {
		return nil, fmt.Errorf("expire buffer must be non-negative")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &TokenManager{
		cache:               cfg.Cache,
		cacheKey:            cfg.CacheKey,
		fetcher:             cfg.Fetcher,
		logger:              logger,
		metrics:             cfg.Metrics,
		expireBufferSeconds: cfg.ExpireBufferSeconds,
		singleFlight:        cfg.SingleFlight,
		onToken:             cfg.OnToken,
	}, nil
}

// GetToken 命中缓存直接返回，否则获取新 token 写入缓存
func (m *TokenManager) GetToken(ctx context.Context) (string, error) {
	if token, ok := m.cache.Get(ctx, m.cacheKey); ok {
		m.metrics.observeTokenCache(true)
		m.notify(ctx, true)
		return token, nil
	}
	m.metrics.observeTokenCache(false)

	token, err := m.do(ctx, false)
	if err != nil {
		return "", err
	}
	m.notify(ctx, false)
	return token, nil
}

// RefreshToken 跳过缓存获取新 token 并覆盖缓存
func (m *TokenManager) RefreshToken(ctx context.Context) (string, error) {
	token, err := m.do(ctx, true)
	if err != nil {
		return "", err
	}
	m.notify(ctx, false)
	return token, nil
}

func (m *TokenManager) do(ctx context.Context, force bool) (string, error) {
	if !m.singleFlight {
		return m.fetchAndStore(ctx)
	}

	key := "get"
	if force {
		key = "refresh"
	}
	ch := m.group.DoChan(key, func() (any, error) {
		fetchCtx := context.WithoutCancel(ctx)
		if !force {
			if token, ok := m.cache.Get(fetchCtx, m.cacheKey); ok {
				return token, nil
			}
		}
		return m.fetchAndStore(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (m *TokenManager) fetchAndStore(ctx context.Context) (string, error) {
	result, err := m.fetcher(ctx)
	if err != nil {
		m.metrics.observeTokenFetch(false)
		return "", err
	}
	if result.Token == "" {
		m.metrics.observeTokenFetch(false)
		return "", NewAuthError(0, "empty tenant_access_token in response")
	}
	if result.ExpiresIn <= 0 {
		m.metrics.observeTokenFetch(false)
		return "", NewAuthError(0, "missing expire in response")
	}
	m.metrics.observeTokenFetch(true)

	ttlSeconds := max(result.ExpiresIn-m.expireBufferSeconds, 1)
	ttl := time.Duration(ttlSeconds) * time.Second
	if err := m.cache.Set(ctx, m.cacheKey, result.Token, ttl); err != nil {
		m.logger.WarnContext(ctx, "cache token failed", slog.Any("error", err))
	}

	m.logger.InfoContext(ctx, "tenant access token refreshed",
		slog.Int("expires_in", result.ExpiresIn),
		slog.Duration("ttl", ttl),
	)

	return result.Token, nil
}

func (m *TokenManager) notify(ctx context.Context, fromCache bool) {
	if m.onToken != nil {
		m.onToken(ctx, fromCache)
	}
}

var _ AccessTokenProvider = (*TokenManager)(nil)
