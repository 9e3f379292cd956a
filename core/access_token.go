package core

import (
	"context"
)

// AccessTokenProvider tenant_access_token 提供者接口
type AccessTokenProvider interface {
	// GetToken 获取可用的 token
	// 实现应处理缓存与按需刷新，不启动后台刷新
	//
	// 参数:
	//   - ctx: 上下文
	//
	// 返回:
	//   - string: 可放入 Authorization: Bearer 的 token
	//   - error: 可能的错误
	//
	// 错误:
	//   - *AuthError: 鉴权接口没有返回可用 token
	//   - *TransportError: 请求鉴权接口失败
	GetToken(ctx context.Context) (string, error)

	// RefreshToken 跳过缓存强制获取新 token
	// 用于调用方发现 token 失效（见 IsTokenError）时主动刷新
	RefreshToken(ctx context.Context) (string, error)
}
