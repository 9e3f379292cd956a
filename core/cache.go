package core

import (
	"context"
	"time"
)

// Cache 通用缓存接口
// 提供基础的字符串读写与删除能力，TTL 由实现负责执行，TokenManager 不会二次校验。
type Cache interface {
	// Get 获取缓存值
	// 根据 key 读取缓存中的字符串值，若不存在或已过期则返回空字符串与 false。
	//
	// 参数:
	//   - ctx: 上下文
	//   - key: 缓存键
	//
	// 返回:
	//   - string: 命中时的缓存值，未命中时为空字符串
	//   - bool: 是否命中缓存
	Get(ctx context.Context, key string) (string, bool)

	// Set 写入缓存值
	// 将字符串值写入缓存并设置 TTL，TTL <= 0 时使用实现自己的默认生命周期。
	//
	// 错误:
	//   - 底层存储写入失败
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Delete 删除缓存值
	// 删除指定 key 的缓存项，若 key 不存在应静默成功。
	Delete(ctx context.Context, key string) error
}
