package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIError(t *testing.T) {
	err := NewAPIError(230001, "invalid receive_id")
	if err.Error() != "feishu error: [230001] invalid receive_id" {
		t.Fatalf("unexpected error message: %s", err.Error())
	}
}

func TestIsTokenError(t *testing.T) {
	if !IsTokenError(NewAPIError(ErrCodeInvalidTenantToken, "invalid token")) {
		t.Fatal("expected invalid token error")
	}
	if !IsTokenError(fmt.Errorf("send: %w", NewAPIError(ErrCodeMissingToken, "missing"))) {
		t.Fatal("expected wrapped missing token error")
	}
	if IsTokenError(NewAPIError(ErrCodeFreqLimit, "too many requests")) {
		t.Fatal("unexpected token error")
	}
	if IsTokenError(errors.New("plain")) {
		t.Fatal("unexpected token error for plain error")
	}
}

func TestIsRateLimited(t *testing.T) {
	if !IsRateLimited(fmt.Errorf("search: %w", NewAPIError(ErrCodeFreqLimit, "request trigger frequency limit"))) {
		t.Fatal("expected wrapped rate limit error")
	}
	if IsRateLimited(NewAPIError(ErrCodeInvalidTenantToken, "invalid token")) {
		t.Fatal("unexpected rate limit error")
	}
	if IsRateLimited(NewAuthError(ErrCodeFreqLimit, "auth")) {
		t.Fatal("auth error is not a rate limit")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("message type", "video")
	if err.Error() != "invalid message type: video" {
		t.Fatalf("unexpected error message: %s", err.Error())
	}
	if NewValidationError("receive id type", "").Error() != "invalid receive id type" {
		t.Fatal("unexpected message for empty value")
	}
}

func TestNotFoundError(t *testing.T) {
	err := fmt.Errorf("search: %w", NewNotFoundError("group", "Group not found with query: Chatbot"))
	if !IsNotFound(err) {
		t.Fatal("expected not found error")
	}
	if IsNotFound(NewAPIError(1, "x")) {
		t.Fatal("unexpected not found")
	}
}

func TestTransportErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &TransportError{Method: "GET", Path: "im/v1/chats/search", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be unwrapped")
	}
	if err.Error() != "transport error: GET im/v1/chats/search: connection refused" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
