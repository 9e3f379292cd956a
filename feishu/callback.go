package feishu

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/funkfeishu/feishu/core"
	"github.com/funkfeishu/feishu/core/utils"
)

const (
	HeaderRequestTimestamp = "X-Lark-Request-Timestamp"
	HeaderRequestNonce     = "X-Lark-Request-Nonce"
	HeaderSignature        = "X-Lark-Signature"

	EventTypeURLVerification = "url_verification"
)

var ErrEncryptKeyRequired = errors.New("encrypt key is required for encrypted events")

// EventHeader 2.0 版本事件的公共头
type EventHeader struct {
	EventID    string `json:"event_id"`
	EventType  string `json:"event_type"`
	CreateTime string `json:"create_time"`
	Token      string `json:"token"`
	AppID      string `json:"app_id"`
	TenantKey  string `json:"tenant_key"`
}

// EventCallback 事件订阅推送的请求体（已解密）
type EventCallback struct {
	Schema    string          `json:"schema"`
	Header    *EventHeader    `json:"header"`
	Event     json.RawMessage `json:"event"`
	Challenge string          `json:"challenge"`
	Token     string          `json:"token"`
	Type      string          `json:"type"`
}

// IsURLVerification 配置请求地址时平台发送的校验请求，需原样返回 challenge
func (e *EventCallback) IsURLVerification() bool {
	return e.Type == EventTypeURLVerification
}

// VerificationToken 1.0 事件与 url_verification 的 token 位于顶层，2.0 事件位于 header
func (e *EventCallback) VerificationToken() string {
	if e.Header != nil && e.Header.Token != "" {
		return e.Header.Token
	}
	return e.Token
}

func (e *EventCallback) EventType() string {
	if e.Header != nil {
		return e.Header.EventType
	}
	return e.Type
}

type encryptedEvent struct {
	Encrypt string `json:"encrypt"`
}

// DecryptEvent 解密 encrypt 字段
// 文档: https://open.feishu.cn/document/server-docs/event-subscription-guide/event-subscription-configure-/encrypt-key-encryption-configuration-case
func DecryptEvent(encryptKey, encrypt string) ([]byte, error) {
	if encryptKey == "" {
		return nil, ErrEncryptKeyRequired
	}
	plain, err := utils.DecryptBase64WithIVPrefix(encryptKey, encrypt)
	if err != nil {
		return nil, fmt.Errorf("decrypt event: %w", err)
	}
	return plain, nil
}

// ParseEventCallback 解析事件回调请求体，请求体为 {"encrypt": "..."} 时先解密
func ParseEventCallback(body []byte, encryptKey string) (*EventCallback, error) {
	var enc encryptedEvent
	if err := json.Unmarshal(body, &enc); err != nil {
		return nil, core.NewResponseParseError(body, err)
	}
	if enc.Encrypt != "" {
		plain, err := DecryptEvent(encryptKey, enc.Encrypt)
		if err != nil {
			return nil, err
		}
		body = plain
	}

	var cb EventCallback
	if err := json.Unmarshal(body, &cb); err != nil {
		return nil, core.NewResponseParseError(body, err)
	}
	return &cb, nil
}

// VerifyEventSignature 校验请求头中的签名，仅在配置了 Encrypt Key 时有效
func VerifyEventSignature(header http.Header, encryptKey string, body []byte) bool {
	signature := header.Get(HeaderSignature)
	if signature == "" {
		return false
	}
	return utils.VerifyEventSignature(
		signature,
		header.Get(HeaderRequestTimestamp),
		header.Get(HeaderRequestNonce),
		encryptKey,
		body,
	)
}
