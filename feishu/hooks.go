package feishu

import "context"

// AccessTokenGenerated GetToken 成功返回
type AccessTokenGenerated struct {
	FromCache bool
}

// MessageSent 消息发送成功
type MessageSent struct {
	To          string
	MessageType MessageType
	MessageID   string
}

// UserSearched 用户 ID 解析成功
type UserSearched struct {
	Identifier string
	UserID     string
}

// GroupSearched 群组搜索命中
type GroupSearched struct {
	Query  string
	ChatID string
}

// Hooks 生命周期回调，均为可选，在调用方的 goroutine 中同步执行
type Hooks struct {
	OnAccessTokenGenerated func(ctx context.Context, e AccessTokenGenerated)
	OnMessageSent          func(ctx context.Context, e MessageSent)
	OnUserSearched         func(ctx context.Context, e UserSearched)
	OnGroupSearched        func(ctx context.Context, e GroupSearched)
}

func (h Hooks) accessTokenGenerated(ctx context.Context, e AccessTokenGenerated) {
	if h.OnAccessTokenGenerated != nil {
		h.OnAccessTokenGenerated(ctx, e)
	}
}

func (h Hooks) messageSent(ctx context.Context, e MessageSent) {
	if h.OnMessageSent != nil {
		h.OnMessageSent(ctx, e)
	}
}

func (h Hooks) userSearched(ctx context.Context, e UserSearched) {
	if h.OnUserSearched != nil {
		h.OnUserSearched(ctx, e)
	}
}

func (h Hooks) groupSearched(ctx context.Context, e GroupSearched) {
	if h.OnGroupSearched != nil {
		h.OnGroupSearched(ctx, e)
	}
}
