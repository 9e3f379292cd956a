package core

import (
	"bytes"
	"encoding/json"
	"errors"
)

var errEmptyBody = errors.New("empty response body")

// Envelope 飞书业务接口统一响应结构 {code, msg, data}
type Envelope[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data T      `json:"data"`
}

// DecodeFeishu 解析信封，code != 0 时返回 *APIError。
// 调用方负责保证 body 来自 2xx 响应（非 2xx 已由 Client 转为 *TransportError）。
func DecodeFeishu[T any](body []byte) (Envelope[T], error) {
	var out Envelope[T]

	if len(bytes.TrimSpace(body)) == 0 {
		return out, NewResponseParseError(body, errEmptyBody)
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return Envelope[T]{}, NewResponseParseError(body, err)
	}
	if out.Code != 0 {
		return Envelope[T]{}, NewAPIError(out.Code, out.Msg)
	}
	return out, nil
}

func truncateBody(body []byte, max int) string {
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
