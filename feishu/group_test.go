package feishu

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funkfeishu/feishu/core"
)

func TestSearch_ReturnsFirstChat(t *testing.T) {
	api := newFakeOpenAPI()
	api.handle(searchChatsPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Chatbot", r.URL.Query().Get("query"))
		assert.Equal(t, "open_id", r.URL.Query().Get("user_id_type"))
		assert.Equal(t, "Bearer t-1", r.Header.Get("Authorization"))
		writeJSON(w, success(map[string]any{
			"items": []map[string]any{
				{"chat_id": "oc_1", "name": "Chatbot"},
				{"chat_id": "oc_2", "name": "Chatbot 2"},
			},
			"has_more": false,
		}))
	})
	var hooked []GroupSearched
	client := newTestClient(t, api, func(c *Config) {
		c.Hooks.OnGroupSearched = func(_ context.Context, e GroupSearched) { hooked = append(hooked, e) }
	})

	chatID, err := client.Search(context.Background(), "Chatbot", "")
	require.NoError(t, err)
	assert.Equal(t, "oc_1", chatID)
	assert.Equal(t, []GroupSearched{{Query: "Chatbot", ChatID: "oc_1"}}, hooked)
}

func TestSearch_NotFound(t *testing.T) {
	api := newFakeOpenAPI()
	api.handle(searchChatsPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, success(map[string]any{"items": []map[string]any{}}))
	})
	client := newTestClient(t, api)

	_, err := client.Search(context.Background(), "Chatbot", UserIDTypeUserID)
	notFound, ok := errors.AsType[*core.NotFoundError](err)
	require.True(t, ok, "expected NotFoundError, got %v", err)
	assert.Equal(t, "group", notFound.Resource)
	assert.Contains(t, err.Error(), "Chatbot")
}

func TestSearch_APIError(t *testing.T) {
	api := newFakeOpenAPI()
	api.handle(searchChatsPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"code": 99991663, "msg": "Invalid access token for authorization."})
	})
	client := newTestClient(t, api)

	_, err := client.Search(context.Background(), "Chatbot", "")
	apiErr, ok := errors.AsType[*core.APIError](err)
	require.True(t, ok, "expected APIError, got %v", err)
	assert.Equal(t, core.ErrCodeInvalidTenantToken, apiErr.Code)
	assert.True(t, core.IsTokenError(err))
}

func TestSearchChats_Paging(t *testing.T) {
	api := newFakeOpenAPI()
	api.handle(searchChatsPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20", r.URL.Query().Get("page_size"))
		assert.Equal(t, "next-1", r.URL.Query().Get("page_token"))
		assert.Equal(t, "union_id", r.URL.Query().Get("user_id_type"))
		writeJSON(w, success(map[string]any{
			"items":      []map[string]any{{"chat_id": "oc_3", "owner_id": "on_1", "external": true}},
			"page_token": "next-2",
			"has_more":   true,
		}))
	})
	client := newTestClient(t, api)

	result, err := client.SearchChats(context.Background(), ChatSearchRequest{
		Query:      "Chatbot",
		UserIDType: UserIDTypeUnionID,
		PageSize:   20,
		PageToken:  "next-1",
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "oc_3", result.Items[0].ChatID)
	assert.True(t, result.Items[0].External)
	assert.Equal(t, "next-2", result.PageToken)
	assert.True(t, result.HasMore)
}
