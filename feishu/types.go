package feishu

import "slices"

// MessageType 消息类型
type MessageType string

const (
	MessageTypeText        MessageType = "text"
	MessageTypeImage       MessageType = "image"
	MessageTypeFile        MessageType = "file"
	MessageTypePost        MessageType = "post"
	MessageTypeAudio       MessageType = "audio"
	MessageTypeMedia       MessageType = "media"
	MessageTypeSticker     MessageType = "sticker"
	MessageTypeInteractive MessageType = "interactive"
	MessageTypeShareChat   MessageType = "share_chat"
	MessageTypeShareUser   MessageType = "share_user"
	MessageTypeSystem      MessageType = "system"
)

var messageTypes = []MessageType{
	MessageTypeText, MessageTypeImage, MessageTypeFile, MessageTypePost,
	MessageTypeAudio, MessageTypeMedia, MessageTypeSticker, MessageTypeInteractive,
	MessageTypeShareChat, MessageTypeShareUser, MessageTypeSystem,
}

func MessageTypes() []MessageType { return slices.Clone(messageTypes) }

func (t MessageType) Valid() bool { return slices.Contains(messageTypes, t) }

// UserIDType 用户 ID 类型
type UserIDType string

const (
	UserIDTypeUnionID UserIDType = "union_id"
	UserIDTypeOpenID  UserIDType = "open_id"
	UserIDTypeUserID  UserIDType = "user_id"
)

var userIDTypes = []UserIDType{UserIDTypeUnionID, UserIDTypeOpenID, UserIDTypeUserID}

func UserIDTypes() []UserIDType { return slices.Clone(userIDTypes) }

func (t UserIDType) Valid() bool { return slices.Contains(userIDTypes, t) }

// ReceiveIDType 接收者 ID 类型
type ReceiveIDType string

const (
	ReceiveIDTypeUnionID ReceiveIDType = "union_id"
	ReceiveIDTypeOpenID  ReceiveIDType = "open_id"
	ReceiveIDTypeEmail   ReceiveIDType = "email"
	ReceiveIDTypeChatID  ReceiveIDType = "chat_id"
	ReceiveIDTypeUserID  ReceiveIDType = "user_id"
)

var receiveIDTypes = []ReceiveIDType{
	ReceiveIDTypeUnionID, ReceiveIDTypeOpenID, ReceiveIDTypeEmail, ReceiveIDTypeChatID, ReceiveIDTypeUserID,
}

func ReceiveIDTypes() []ReceiveIDType { return slices.Clone(receiveIDTypes) }

func (t ReceiveIDType) Valid() bool { return slices.Contains(receiveIDTypes, t) }
