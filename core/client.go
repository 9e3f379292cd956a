package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

const (
	DefaultBaseURL = "https://open.feishu.cn/open-apis/"
	DefaultTimeout = 30 * time.Second
)

type ClientConfig struct {
	BaseURL       string
	HTTPClient    *http.Client
	TokenProvider AccessTokenProvider
	Logger        *slog.Logger
	Metrics       *Metrics
	Options       []Option
}

// Response 原始 HTTP 响应
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

type settings struct {
	httpClient *http.Client
	timeout    time.Duration
	headers    http.Header
}

func (s *settings) clone() *settings {
	return &settings{
		httpClient: s.httpClient,
		timeout:    s.timeout,
		headers:    s.headers.Clone(),
	}
}

// Option 修改 Client 的可覆盖设置，见 Client.Configure
type Option func(*settings)

// WithTimeout 设置单次请求的默认超时，<= 0 表示不限制
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithHeader 为后续每个请求附加固定请求头
func WithHeader(key, value string) Option {
	return func(s *settings) { s.headers.Set(key, value) }
}

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) {
		if hc != nil {
			s.httpClient = hc
		}
	}
}

// WithProxy 通过代理发送请求
func WithProxy(proxyURL *url.URL) Option {
	return func(s *settings) {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		s.httpClient = &http.Client{Transport: transport}
	}
}

type Client struct {
	baseURL       *url.URL
	tokenProvider AccessTokenProvider
	logger        *slog.Logger
	metrics       *Metrics
	settings      atomic.Pointer[settings]
}

func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	parsedBaseURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL:       parsedBaseURL,
		tokenProvider: cfg.TokenProvider,
		logger:        logger,
		metrics:       cfg.Metrics,
	}
	c.settings.Store(&settings{
		httpClient: httpClient,
		timeout:    DefaultTimeout,
		headers:    make(http.Header),
	})
	c.Configure(cfg.Options...)

	return c, nil
}

// Configure 修改超时、默认请求头、代理等设置。
// 只影响之后发起的请求，已经开始的请求继续使用旧设置。
func (c *Client) Configure(opts ...Option) {
	if len(opts) == 0 {
		return
	}
	for {
		old := c.settings.Load()
		next := old.clone()
		for _, opt := range opts {
			opt(next)
		}
		if c.settings.CompareAndSwap(old, next) {
			return
		}
	}
}

func (c *Client) Logger() *slog.Logger {
	return c.logger
}

func (c *Client) Request() *RequestBuilder {
	return newRequestBuilder(c)
}

func (c *Client) buildURL(path string, query map[string]string) (string, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("parse path: %w", err)
	}

	u := c.baseURL.ResolveReference(ref)
	if len(query) > 0 {
		values := u.Query()
		for key, value := range query {
			values.Set(key, value)
		}
		u.RawQuery = values.Encode()
	}

	return u.String(), nil
}

type outgoingRequest struct {
	method      string
	path        string
	query       map[string]string
	headers     map[string]string
	body        []byte
	logBody     []byte
	contentType string
	timeout     time.Duration
}

func (c *Client) doRequest(ctx context.Context, req outgoingRequest) (*Response, error) {
	s := c.settings.Load()

	reqURL, err := c.buildURL(req.path, req.query)
	if err != nil {
		return nil, &TransportError{Method: req.method, Path: req.path, Err: err}
	}

	timeout := s.timeout
	if req.timeout > 0 {
		timeout = req.timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var bodyReader io.Reader
	if req.body != nil {
		bodyReader = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, reqURL, bodyReader)
	if err != nil {
		return nil, &TransportError{Method: req.method, Path: req.path, Err: fmt.Errorf("create request: %w", err)}
	}

	maps.Copy(httpReq.Header, s.headers.Clone())
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	for key, value := range req.headers {
		httpReq.Header.Set(key, value)
	}

	c.logRequest(ctx, req.method, reqURL, req.logBody)

	start := time.Now()
	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.observeRequest(req.method, req.path, 0, time.Since(start))
		return nil, &TransportError{Method: req.method, Path: req.path, Err: fmt.Errorf("do request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	c.metrics.observeRequest(req.method, req.path, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, &TransportError{Method: req.method, Path: req.path, Err: fmt.Errorf("read response: %w", err)}
	}

	c.logResponse(ctx, resp.StatusCode, respBody)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{
			Method:     req.method,
			Path:       req.path,
			StatusCode: resp.StatusCode,
			Body:       respBody,
			Err:        fmt.Errorf("http status %d", resp.StatusCode),
		}
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: respBody}, nil
}

func (c *Client) logRequest(ctx context.Context, method, rawURL string, body []byte) {
	if !c.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}

	attrs := []slog.Attr{
		slog.String("method", method),
		slog.String("url", RedactURLQuery(rawURL)),
	}
	if len(body) > 0 {
		attrs = append(attrs, slog.String("body", string(body)))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "http request", attrs...)
}

func (c *Client) logResponse(ctx context.Context, statusCode int, body []byte) {
	if !c.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}

	attrs := []slog.Attr{slog.Int("status", statusCode)}
	if len(body) > 0 {
		attrs = append(attrs, slog.String("body", string(RedactJSON(body))))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "http response", attrs...)
}
