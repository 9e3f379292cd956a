package feishu

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/funkfeishu/feishu/core"
)

const batchGetIDPath = "contact/v3/users/batch_get_id"

type batchGetIDBody struct {
	Emails          []string `json:"emails,omitempty"`
	Mobiles         []string `json:"mobiles,omitempty"`
	IncludeResigned bool     `json:"include_resigned"`
}

type batchGetIDData struct {
	UserList []struct {
		UserID string `json:"user_id"`
		Email  string `json:"email"`
		Mobile string `json:"mobile"`
	} `json:"user_list"`
}

// GetID 通过邮箱或手机号获取用户 ID
// 接口文档: https://open.feishu.cn/document/server-docs/contact-v3/user/batch_get_id
//
// identifier 是合法邮箱时按邮箱查询，否则按手机号查询；idType 为空时使用 union_id。
//
// 错误:
//   - *core.ValidationError: idType 不合法
//   - *core.NotFoundError: 找不到用户
func (c *Client) GetID(ctx context.Context, identifier string, idType UserIDType) (string, error) {
	if idType == "" {
		idType = UserIDTypeUnionID
	}
	if !idType.Valid() {
		return "", core.NewValidationError("user id type", string(idType))
	}

	body := batchGetIDBody{IncludeResigned: true}
	if isEmail(identifier) {
		body.Emails = []string{identifier}
	} else {
		body.Mobiles = []string{identifier}
	}

	data, err := Request[batchGetIDData](c).
		Path(batchGetIDPath).
		Query("user_id_type", string(idType)).
		Body(body).
		Post(ctx)
	if err != nil {
		return "", err
	}
	if len(data.UserList) == 0 || data.UserList[0].UserID == "" {
		c.cfg.Logger.DebugContext(ctx, "user not found", slog.String("user_id_type", string(idType)))
		return "", core.NewNotFoundError("user", "User not found")
	}

	userID := data.UserList[0].UserID
	c.cfg.Hooks.userSearched(ctx, UserSearched{Identifier: identifier, UserID: userID})
	return userID, nil
}

// isEmail 只接受 local@label.label 形式的裸地址，不接受引号 local part 与单段域名
func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	local, domain := s[:at], s[at+1:]
	if strings.ContainsRune(local, '"') {
		return false
	}
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
	}
	return true
}
