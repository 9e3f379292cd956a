package feishu

import "github.com/funkfeishu/feishu/core"

type TypedRequest[T any] = core.TypedRequest[T]

// Request 发起携带 tenant_access_token 的请求，用于调用尚未封装的接口
func Request[T any](c *Client) *TypedRequest[T] {
	return core.NewTypedRequest[T](c.apiClient)
}
