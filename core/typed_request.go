package core

import (
	"context"
	"time"
)

// TypedRequest 解析 {code,msg,data} 信封并返回 data 部分
type TypedRequest[T any] struct {
	builder *RequestBuilder
}

func NewTypedRequest[T any](client *Client) *TypedRequest[T] {
	return &TypedRequest[T]{builder: newRequestBuilder(client)}
}

func (r *TypedRequest[T]) Path(path string) *TypedRequest[T] {
	r.builder.Path(path)
	return r
}

func (r *TypedRequest[T]) Query(key, value string) *TypedRequest[T] {
	r.builder.Query(key, value)
	return r
}

func (r *TypedRequest[T]) QueryMap(query map[string]string) *TypedRequest[T] {
	r.builder.QueryMap(query)
	return r
}

func (r *TypedRequest[T]) Header(key, value string) *TypedRequest[T] {
	r.builder.Header(key, value)
	return r
}

func (r *TypedRequest[T]) Body(body any) *TypedRequest[T] {
	r.builder.Body(body)
	return r
}

func (r *TypedRequest[T]) Timeout(d time.Duration) *TypedRequest[T] {
	r.builder.Timeout(d)
	return r
}

func (r *TypedRequest[T]) WithoutToken() *TypedRequest[T] {
	r.builder.WithoutToken()
	return r
}

func (r *TypedRequest[T]) Get(ctx context.Context) (T, error) {
	return decodeData[T](r.builder.Get(ctx))
}

func (r *TypedRequest[T]) Post(ctx context.Context) (T, error) {
	return decodeData[T](r.builder.Post(ctx))
}

func (r *TypedRequest[T]) Put(ctx context.Context) (T, error) {
	return decodeData[T](r.builder.Put(ctx))
}

func (r *TypedRequest[T]) Delete(ctx context.Context) (T, error) {
	return decodeData[T](r.builder.Delete(ctx))
}

func decodeData[T any](resp *Response, err error) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	envelope, err := DecodeFeishu[T](resp.Body)
	if err != nil {
		var zero T
		return zero, err
	}
	return envelope.Data, nil
}
