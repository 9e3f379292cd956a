package feishu

import (
	"context"
	"strconv"

	"github.com/funkfeishu/feishu/core"
)

const searchChatsPath = "im/v1/chats/search"

type ChatSearchRequest struct {
	Query string
	// UserIDType 响应中 owner_id 的类型，默认 open_id
	UserIDType UserIDType
	PageSize   int
	PageToken  string
}

type Chat struct {
	ChatID      string `json:"chat_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Avatar      string `json:"avatar"`
	OwnerID     string `json:"owner_id"`
	OwnerIDType string `json:"owner_id_type"`
	External    bool   `json:"external"`
	TenantKey   string `json:"tenant_key"`
	ChatStatus  string `json:"chat_status"`
}

type ChatSearchResult struct {
	Items     []Chat `json:"items"`
	PageToken string `json:"page_token"`
	HasMore   bool   `json:"has_more"`
}

// SearchChats 搜索机器人所在的群，返回一页结果
// 接口文档: https://open.feishu.cn/document/server-docs/group/chat/search
func (c *Client) SearchChats(ctx context.Context, req ChatSearchRequest) (*ChatSearchResult, error) {
	userIDType := req.UserIDType
	if userIDType == "" {
		userIDType = UserIDTypeOpenID
	}

	r := Request[ChatSearchResult](c).
		Path(searchChatsPath).
		Query("user_id_type", string(userIDType)).
		Query("query", req.Query)
	if req.PageSize > 0 {
		r.Query("page_size", strconv.Itoa(req.PageSize))
	}
	if req.PageToken != "" {
		r.Query("page_token", req.PageToken)
	}

	result, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Search 按关键字搜索群，返回第一个匹配群的 chat_id
//
// 错误:
//   - *core.NotFoundError: 没有匹配的群
//   - *core.APIError: 平台返回 code != 0
func (c *Client) Search(ctx context.Context, query string, userIDType UserIDType) (string, error) {
	result, err := c.SearchChats(ctx, ChatSearchRequest{Query: query, UserIDType: userIDType})
	if err != nil {
		return "", err
	}
	if len(result.Items) == 0 || result.Items[0].ChatID == "" {
		return "", core.NewNotFoundError("group", "Group not found with query: "+query)
	}

	chatID := result.Items[0].ChatID
	c.cfg.Hooks.groupSearched(ctx, GroupSearched{Query: query, ChatID: chatID})
	return chatID, nil
}
