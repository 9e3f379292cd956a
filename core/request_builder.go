package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// RequestBuilder 请求构建器
type RequestBuilder struct {
	client               *Client
	path                 string
	query                map[string]string
	headers              map[string]string
	body                 any
	form                 map[string]string
	timeout              time.Duration
	shouldAddAccessToken bool
}

// newRequestBuilder 创建请求构建器（包内使用）
func newRequestBuilder(client *Client) *RequestBuilder {
	return &RequestBuilder{
		client:               client,
		query:                make(map[string]string),
		headers:              make(map[string]string),
		shouldAddAccessToken: true, // 默认携带 Authorization
	}
}

// Path 设置请求路径（相对于 BaseURL）
func (b *RequestBuilder) Path(path string) *RequestBuilder {
	b.path = path
	return b
}

// Query 添加单个查询参数
func (b *RequestBuilder) Query(key, value string) *RequestBuilder {
	b.query[key] = value
	return b
}

// QueryMap 批量设置查询参数
func (b *RequestBuilder) QueryMap(query map[string]string) *RequestBuilder {
	for k, v := range query {
		b.query[k] = v
	}
	return b
}

// Header 设置单次请求的请求头
func (b *RequestBuilder) Header(key, value string) *RequestBuilder {
	b.headers[key] = value
	return b
}

// Body 设置 JSON 请求体
func (b *RequestBuilder) Body(body any) *RequestBuilder {
	b.body = body
	b.form = nil
	return b
}

// Form 设置 urlencoded 表单请求体
func (b *RequestBuilder) Form(form map[string]string) *RequestBuilder {
	b.form = form
	b.body = nil
	return b
}

// Timeout 覆盖本次请求的超时
func (b *RequestBuilder) Timeout(d time.Duration) *RequestBuilder {
	b.timeout = d
	return b
}

// WithoutToken 不添加 Authorization
func (b *RequestBuilder) WithoutToken() *RequestBuilder {
	b.shouldAddAccessToken = false
	return b
}

// WithToken 添加 Authorization（默认行为）
func (b *RequestBuilder) WithToken() *RequestBuilder {
	b.shouldAddAccessToken = true
	return b
}

// Get 执行 GET 请求
func (b *RequestBuilder) Get(ctx context.Context) (*Response, error) {
	return b.do(ctx, http.MethodGet)
}

// Post 执行 POST 请求
func (b *RequestBuilder) Post(ctx context.Context) (*Response, error) {
	return b.do(ctx, http.MethodPost)
}

// Put 执行 PUT 请求
func (b *RequestBuilder) Put(ctx context.Context) (*Response, error) {
	return b.do(ctx, http.MethodPut)
}

// Delete 执行 DELETE 请求
func (b *RequestBuilder) Delete(ctx context.Context) (*Response, error) {
	return b.do(ctx, http.MethodDelete)
}

func (b *RequestBuilder) do(ctx context.Context, method string) (*Response, error) {
	req := outgoingRequest{
		method:  method,
		path:    b.path,
		query:   b.query,
		headers: make(map[string]string, len(b.headers)+1),
		timeout: b.timeout,
	}
	for k, v := range b.headers {
		req.headers[k] = v
	}

	if b.shouldAddAccessToken {
		if b.client.tokenProvider == nil {
			return nil, fmt.Errorf("get access token: token provider is not configured")
		}
		token, err := b.client.tokenProvider.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("get access token: %w", err)
		}
		req.headers["Authorization"] = "Bearer " + token
	}

	switch {
	case b.form != nil:
		values := make(url.Values, len(b.form))
		for k, v := range b.form {
			values.Set(k, v)
		}
		req.body = []byte(values.Encode())
		req.contentType = contentTypeForm
		if b.client.logger.Enabled(ctx, slog.LevelDebug) {
			req.logBody = []byte(encodeRedactedForm(b.form))
		}
	case b.body != nil:
		data, err := json.Marshal(b.body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		req.body = data
		req.contentType = contentTypeJSON
		if b.client.logger.Enabled(ctx, slog.LevelDebug) {
			req.logBody = RedactJSON(data)
		}
	}

	return b.client.doRequest(ctx, req)
}

func encodeRedactedForm(form map[string]string) string {
	values := make(url.Values, len(form))
	for k, v := range RedactQueryMap(form) {
		values.Set(k, v)
	}
	return values.Encode()
}
