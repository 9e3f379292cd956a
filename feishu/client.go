package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/funkfeishu/feishu/core"
)

const (
	tenantAccessTokenPath     = "auth/v3/tenant_access_token/internal"
	accessTokenCacheKeyPrefix = "feishu.access_token."
)

type Config struct {
	AppID      string
	AppSecret  string
	Cache      core.Cache
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *core.Metrics
	BaseURL    string
	Options    []core.Option
	// TokenExpireBuffer 缓存 token 时从 expire 中扣除的秒数，默认 0
	TokenExpireBuffer int
	// SingleFlightToken 并发缓存未命中时只请求一次鉴权接口
	SingleFlightToken bool
	Hooks             Hooks
}

type Client struct {
	cfg          Config
	apiClient    *core.Client
	tokenClient  *core.Client
	tokenManager *core.TokenManager
}

type tenantAccessTokenResponse struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            *int   `json:"expire"`
}

func New(cfg Config) (*Client, error) {
	cfg = normalizeConfig(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	tokenClient, err := core.NewClient(core.ClientConfig{
		BaseURL:    cfg.BaseURL,
		HTTPClient: cfg.HTTPClient,
		Logger:     cfg.Logger,
		Metrics:    cfg.Metrics,
		Options:    cfg.Options,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{cfg: cfg, tokenClient: tokenClient}

	tokenManager, err := core.NewTokenManager(core.TokenManagerConfig{
		Cache:               cfg.Cache,
		CacheKey:            AccessTokenCacheKey(cfg.AppID, cfg.AppSecret),
		ExpireBufferSeconds: cfg.TokenExpireBuffer,
		SingleFlight:        cfg.SingleFlightToken,
		Logger:              cfg.Logger,
		Metrics:             cfg.Metrics,
		Fetcher:             c.FetchNewToken,
		OnToken: func(ctx context.Context, fromCache bool) {
			cfg.Hooks.accessTokenGenerated(ctx, AccessTokenGenerated{FromCache: fromCache})
		},
	})
	if err != nil {
		return nil, err
	}

	apiClient, err := core.NewClient(core.ClientConfig{
		BaseURL:       cfg.BaseURL,
		HTTPClient:    cfg.HTTPClient,
		TokenProvider: tokenManager,
		Logger:        cfg.Logger,
		Metrics:       cfg.Metrics,
		Options:       cfg.Options,
	})
	if err != nil {
		return nil, err
	}

	c.apiClient = apiClient
	c.tokenManager = tokenManager
	return c, nil
}

// AccessTokenCacheKey 缓存 key，与其它共享同一缓存后端的实现保持一致
func AccessTokenCacheKey(appID, appSecret string) string {
	return accessTokenCacheKeyPrefix + appID + "." + appSecret
}

func (c *Client) Config() Config {
	return c.cfg
}

func (c *Client) AccessTokenProvider() core.AccessTokenProvider {
	return c.tokenManager
}

// Configure 修改传输层设置（超时、请求头、代理），只影响之后发起的请求
func (c *Client) Configure(opts ...core.Option) {
	c.tokenClient.Configure(opts...)
	c.apiClient.Configure(opts...)
}

// GetToken 返回可用的 tenant_access_token，缓存未命中时向鉴权接口请求
func (c *Client) GetToken(ctx context.Context) (string, error) {
	return c.tokenManager.GetToken(ctx)
}

// RefreshToken 跳过缓存获取新 token
func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	return c.tokenManager.RefreshToken(ctx)
}

// FetchNewToken 请求一次鉴权接口，不读写缓存
// 接口文档: https://open.feishu.cn/document/server-docs/authentication-management/access-token/tenant_access_token_internal
//
// 错误:
//   - *core.AuthError: 响应中没有 tenant_access_token 或 expire
//   - *core.TransportError: 网络错误或非 2xx 响应
func (c *Client) FetchNewToken(ctx context.Context) (core.TokenFetchResult, error) {
	resp, err := c.tokenClient.Request().
		Path(tenantAccessTokenPath).
		Form(map[string]string{
			"app_id":     c.cfg.AppID,
			"app_secret": c.cfg.AppSecret,
		}).
		WithoutToken().
		Post(ctx)
	if err != nil {
		return core.TokenFetchResult{}, fmt.Errorf("request tenant access token: %w", err)
	}

	var out tenantAccessTokenResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return core.TokenFetchResult{}, core.NewResponseParseError(resp.Body, err)
	}
	if out.TenantAccessToken == "" {
		msg := out.Msg
		if msg == "" {
			msg = "empty tenant_access_token in response"
		}
		c.cfg.Logger.ErrorContext(ctx, "fetch tenant access token failed",
			slog.String("app_id", c.cfg.AppID),
			slog.Int("code", out.Code),
			slog.String("msg", out.Msg),
		)
		return core.TokenFetchResult{}, core.NewAuthError(out.Code, msg)
	}
	if out.Expire == nil {
		return core.TokenFetchResult{}, core.NewAuthError(out.Code, "missing expire in response")
	}

	return core.TokenFetchResult{Token: out.TenantAccessToken, ExpiresIn: *out.Expire}, nil
}

func normalizeConfig(cfg Config) Config {
	cfg.AppID = strings.TrimSpace(cfg.AppID)
	cfg.AppSecret = strings.TrimSpace(cfg.AppSecret)
	if cfg.Cache == nil {
		cfg.Cache = core.NewMemoryCache()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

func validateConfig(cfg Config) error {
	if cfg.AppID == "" {
		return fmt.Errorf("app_id is required")
	}
	if cfg.AppSecret == "" {
		return fmt.Errorf("app_secret is required")
	}
	if cfg.TokenExpireBuffer < 0 {
		return fmt.Errorf("token expire buffer must be non-negative")
	}
	return nil
}
