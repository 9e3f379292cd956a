package core

import (
	"errors"
	"testing"
)

func TestDecodeFeishu(t *testing.T) {
	type sample struct {
		Name string `json:"name"`
	}

	t.Run("success", func(t *testing.T) {
		got, err := DecodeFeishu[sample]([]byte(`{"code":0,"msg":"success","data":{"name":"ok"}}`))
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if got.Data.Name != "ok" {
			t.Fatalf("unexpected name: %s", got.Data.Name)
		}
	})

	t.Run("business error", func(t *testing.T) {
		_, err := DecodeFeishu[sample]([]byte(`{"code":99991663,"msg":"Invalid access token for authorization."}`))
		var ae *APIError
		if !errors.As(err, &ae) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if ae.Code != 99991663 {
			t.Fatalf("unexpected code: %d", ae.Code)
		}
	})

	t.Run("not json", func(t *testing.T) {
		_, err := DecodeFeishu[sample]([]byte(`<html>bad gateway</html>`))
		var pe *ResponseParseError
		if !errors.As(err, &pe) {
			t.Fatalf("expected ResponseParseError, got %v", err)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		_, err := DecodeFeishu[sample]([]byte("  "))
		if !errors.Is(err, errEmptyBody) {
			t.Fatalf("expected empty body error, got %v", err)
		}
	})
}
