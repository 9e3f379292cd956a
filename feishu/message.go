package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/funkfeishu/feishu/core"
)

const sendMessagePath = "im/v1/messages"

// SendOption 发送消息的可选参数
type SendOption func(*sendOptions)

type sendOptions struct {
	userIDType    UserIDType
	receiveIDType ReceiveIDType
	uuid          string
}

// WithUserIDType 通过 open_id 发送时解析 to 所用的用户 ID 类型，默认 open_id
func WithUserIDType(t UserIDType) SendOption {
	return func(o *sendOptions) { o.userIDType = t }
}

// WithReceiveIDType 接收者 ID 类型，默认 open_id
func WithReceiveIDType(t ReceiveIDType) SendOption {
	return func(o *sendOptions) { o.receiveIDType = t }
}

// WithUUID 消息去重标识，一小时内相同 uuid 的请求只会发送一条消息
func WithUUID(uuid string) SendOption {
	return func(o *sendOptions) { o.uuid = uuid }
}

// SentMessage 发送成功后平台返回的消息
type SentMessage struct {
	MessageID  string `json:"message_id"`
	ChatID     string `json:"chat_id"`
	MsgType    string `json:"msg_type"`
	CreateTime string `json:"create_time"`
}

type sendMessageBody struct {
	ReceiveID string `json:"receive_id"`
	MsgType   string `json:"msg_type"`
	Content   string `json:"content"`
	UUID      string `json:"uuid,omitempty"`
}

// Send 发送消息
// 接口文档: https://open.feishu.cn/document/server-docs/im-v1/message/create
//
// 参数:
//   - to: 接收者。receive id 类型为 chat_id 时为群 ID，为 open_id 时为邮箱或手机号
//   - msgType: 消息类型
//   - content: 消息内容。map/struct 原样使用；字符串是合法 JSON 时按 JSON 嵌入，否则作为字符串
//
// 错误:
//   - *core.ValidationError: 消息类型、用户 ID 类型或接收者 ID 类型不合法，此时不会发起任何请求
//   - *core.NotFoundError: 通过邮箱或手机号找不到用户
//   - *core.APIError: 平台返回 code != 0
//
// 示例:
//
//	msg, err := client.Send(ctx, "oc_xxx", feishu.MessageTypeText,
//	    map[string]string{"text": "Hello, world!"},
//	    feishu.WithReceiveIDType(feishu.ReceiveIDTypeChatID),
//	)
func (c *Client) Send(ctx context.Context, to string, msgType MessageType, content any, opts ...SendOption) (*SentMessage, error) {
	o := sendOptions{
		userIDType:    UserIDTypeOpenID,
		receiveIDType: ReceiveIDTypeOpenID,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if !msgType.Valid() {
		return nil, core.NewValidationError("message type", string(msgType))
	}
	if !o.userIDType.Valid() {
		return nil, core.NewValidationError("user id type", string(o.userIDType))
	}
	if !o.receiveIDType.Valid() {
		return nil, core.NewValidationError("receive id type", string(o.receiveIDType))
	}

	formatted, err := formatContent(content)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(map[string]any{string(msgType): formatted})
	if err != nil {
		return nil, fmt.Errorf("encode message content: %w", err)
	}

	receiveID, err := c.resolveReceiveID(ctx, to, o.userIDType, o.receiveIDType)
	if err != nil {
		return nil, err
	}

	c.cfg.Logger.DebugContext(ctx, "send message",
		slog.String("receive_id_type", string(o.receiveIDType)),
		slog.String("msg_type", string(msgType)),
	)

	msg, err := Request[SentMessage](c).
		Path(sendMessagePath).
		Query("receive_id_type", string(o.receiveIDType)).
		Body(sendMessageBody{
			ReceiveID: receiveID,
			MsgType:   string(msgType),
			Content:   string(encoded),
			UUID:      o.uuid,
		}).
		Post(ctx)
	if err != nil {
		return nil, err
	}

	c.cfg.Hooks.messageSent(ctx, MessageSent{To: to, MessageType: msgType, MessageID: msg.MessageID})
	return &msg, nil
}

// 目前只支持直接使用群 ID，或把邮箱/手机号解析为用户 ID
func (c *Client) resolveReceiveID(ctx context.Context, to string, userIDType UserIDType, receiveIDType ReceiveIDType) (string, error) {
	switch receiveIDType {
	case ReceiveIDTypeChatID:
		return to, nil
	case ReceiveIDTypeOpenID:
		return c.GetID(ctx, to, userIDType)
	default:
		return "", core.NewValidationError("receive id type", string(receiveIDType))
	}
}

func formatContent(content any) (any, error) {
	switch v := content.(type) {
	case nil:
		return nil, core.NewValidationError("content", "")
	case json.RawMessage:
		if json.Valid(v) {
			return v, nil
		}
		return string(v), nil
	case []byte:
		if json.Valid(v) {
			return json.RawMessage(v), nil
		}
		return string(v), nil
	case string:
		if json.Valid([]byte(v)) {
			return json.RawMessage(v), nil
		}
		return v, nil
	default:
		return v, nil
	}
}
