package core

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const redactedValue = "***"

var sensitiveQueryKeys = map[string]struct{}{
	"access_token":        {},
	"app_access_token":    {},
	"app_secret":          {},
	"authorization":       {},
	"client_secret":       {},
	"code":                {},
	"encrypt_key":         {},
	"refresh_token":       {},
	"secret":              {},
	"tenant_access_token": {},
	"token":               {},
}

// 飞书 JSON 响应中携带凭证的字段，按 gjson 路径匹配
var sensitiveJSONPaths = []string{
	"tenant_access_token",
	"app_access_token",
	"app_secret",
	"access_token",
	"refresh_token",
	"data.access_token",
	"data.refresh_token",
}

// RedactQueryMap 脱敏查询参数，返回拷贝，原 map 不会被修改。
func RedactQueryMap(query map[string]string) map[string]string {
	if query == nil {
		return nil
	}

	out := make(map[string]string, len(query))
	for key, value := range query {
		if isSensitiveQueryKey(key) {
			out[key] = redactedValue
			continue
		}
		out[key] = value
	}

	return out
}

// RedactURLQuery 脱敏 URL 查询参数中的敏感字段。
func RedactURLQuery(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.RawQuery == "" {
		return rawURL
	}

	query := parsed.Query()
	for key, values := range query {
		if !isSensitiveQueryKey(key) {
			continue
		}
		for i := range values {
			values[i] = redactedValue
		}
		query[key] = values
	}

	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// RedactJSON 脱敏 JSON 中的凭证字段，非 JSON 原样返回。
func RedactJSON(body []byte) []byte {
	if !gjson.ValidBytes(body) {
		return body
	}

	out := bytes.Clone(body)
	for _, path := range sensitiveJSONPaths {
		if !gjson.GetBytes(out, path).Exists() {
			continue
		}
		redacted, err := sjson.SetBytes(out, path, redactedValue)
		if err != nil {
			continue
		}
		out = redacted
	}
	return out
}

func isSensitiveQueryKey(key string) bool {
	_, exists := sensitiveQueryKeys[strings.ToLower(key)]
	return exists
}
