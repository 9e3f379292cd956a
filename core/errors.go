package core

import (
	"errors"
	"fmt"
)

// APIError 飞书业务错误（响应信封中 code != 0）
type APIError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Error 实现 error 接口
func (e *APIError) Error() string {
	return fmt.Sprintf("feishu error: [%d] %s", e.Code, e.Msg)
}

// NewAPIError 创建飞书业务错误
func NewAPIError(code int, msg string) *APIError {
	return &APIError{
		Code: code,
		Msg:  msg,
	}
}

// 常见错误码定义
const (
	ErrCodeMissingToken       = 99991661 // 请求头缺少 access token
	ErrCodeInvalidTenantToken = 99991663 // tenant_access_token 无效
	ErrCodeInvalidAccessToken = 99991668 // access token 无效
	ErrCodeFreqLimit          = 99991400 // 请求频率超限
)

// IsTokenError 判断是否为 token 相关错误（调用方可据此调用 RefreshToken）
func IsTokenError(err error) bool {
	if ae, ok := errors.AsType[*APIError](err); ok {
		switch ae.Code {
		case ErrCodeMissingToken, ErrCodeInvalidTenantToken, ErrCodeInvalidAccessToken:
			return true
		}
		return false
	}
	if ae, ok := errors.AsType[*AuthError](err); ok {
		return ae.Code == ErrCodeInvalidTenantToken
	}
	return false
}

// IsRateLimited 判断是否触发平台频率限制
func IsRateLimited(err error) bool {
	ae, ok := errors.AsType[*APIError](err)
	return ok && ae.Code == ErrCodeFreqLimit
}

// ValidationError 参数不在允许的枚举范围内，发生在任何网络请求之前
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Value)
}

// NewValidationError 创建参数校验错误
func NewValidationError(field, value string) *ValidationError {
	return &ValidationError{Field: field, Value: value}
}

// TransportError 网络、超时或非 2xx 响应
type TransportError struct {
	Method     string
	Path       string
	StatusCode int    // 未收到响应时为 0
	Body       []byte // 非 2xx 时的原始响应体
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error: %s %s: http status %d: %s",
			e.Method, e.Path, e.StatusCode, truncateBody(e.Body, 256))
	}
	return fmt.Sprintf("transport error: %s %s: %v", e.Method, e.Path, e.Err)
}

// Unwrap 支持 errors.Is/As
func (e *TransportError) Unwrap() error {
	return e.Err
}

// AuthError 鉴权接口没有返回可用的 tenant_access_token
type AuthError struct {
	Code int
	Msg  string
}

func (e *AuthError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("auth error: [%d] %s", e.Code, e.Msg)
	}
	return "auth error: " + e.Msg
}

// NewAuthError 创建鉴权错误
func NewAuthError(code int, msg string) *AuthError {
	return &AuthError{Code: code, Msg: msg}
}

// NotFoundError 查询或解析没有匹配的实体
type NotFoundError struct {
	Resource string // "user" / "group"
	Message  string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// NewNotFoundError 创建未找到错误
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{Resource: resource, Message: message}
}

// IsNotFound 判断是否为未找到错误
func IsNotFound(err error) bool {
	_, ok := errors.AsType[*NotFoundError](err)
	return ok
}

// ResponseParseError 响应解析错误
// 当响应体不是有效的 JSON 时返回此错误
type ResponseParseError struct {
	Body []byte // 原始响应体
	Err  error  // 底层解析错误
}

// Error 实现 error 接口
func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("failed to parse response: %v", e.Err)
}

// Unwrap 支持 errors.Is/As
func (e *ResponseParseError) Unwrap() error {
	return e.Err
}

// NewResponseParseError 创建响应解析错误
func NewResponseParseError(body []byte, err error) *ResponseParseError {
	return &ResponseParseError{
		Body: body,
		Err:  err,
	}
}
