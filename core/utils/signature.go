package utils

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// SHA256Hex 按给定顺序拼接后计算 SHA-256，返回小写十六进制
func SHA256Hex(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "")))
	return hex.EncodeToString(sum[:])
}

// VerifyEventSignature 校验事件回调签名
// signature: 请求头 X-Lark-Signature
// timestamp: 请求头 X-Lark-Request-Timestamp
// nonce: 请求头 X-Lark-Request-Nonce
// encryptKey: 开发者后台配置的 Encrypt Key
// body: 原始请求体
func VerifyEventSignature(signature, timestamp, nonce, encryptKey string, body []byte) bool {
	computed := SHA256Hex(timestamp, nonce, encryptKey, string(body))
	return subtle.ConstantTimeCompare([]byte(computed), []byte(signature)) == 1
}
