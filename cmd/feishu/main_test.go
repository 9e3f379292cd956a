package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funkfeishu/feishu/core"
)

func TestRun_Usage(t *testing.T) {
	var out bytes.Buffer
	assert.ErrorIs(t, run(context.Background(), nil, &out), errUsage)
	assert.ErrorIs(t, run(context.Background(), []string{"nope"}, &out), errUsage)

	require.NoError(t, run(context.Background(), []string{"help"}, &out))
	assert.Contains(t, out.String(), "commands:")
}

func TestRun_SendValidatesBeforeNetwork(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{
		"send",
		"--app-id", "cli_test",
		"--app-secret", "secret",
		"--base-url", "http://127.0.0.1:1/",
		"--log-level", "error",
		"--to", "oc_1",
		"--msg-type", "video",
		"--content", `{"text":"hi"}`,
	}, &out)

	validationErr, ok := errors.AsType[*core.ValidationError](err)
	require.True(t, ok, "expected ValidationError, got %v", err)
	assert.Equal(t, "message type", validationErr.Field)
	assert.Empty(t, out.String())
}

func TestRun_MissingCredentials(t *testing.T) {
	t.Setenv("FEISHU_APP_ID", "")
	t.Setenv("FEISHU_APP_SECRET", "")
	err := run(context.Background(), []string{"token", "--log-level", "error"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "app_id is required")
}

func TestRun_UserRequiresIdentifier(t *testing.T) {
	err := run(context.Background(), []string{"user"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, errUsage)
}
