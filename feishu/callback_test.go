package feishu

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funkfeishu/feishu/core/utils"
)

func encryptedBody(t *testing.T, encryptKey string, plain string) []byte {
	t.Helper()
	encrypted, err := utils.EncryptBase64WithIVPrefix(encryptKey, []byte(plain))
	require.NoError(t, err)
	body, err := json.Marshal(map[string]string{"encrypt": encrypted})
	require.NoError(t, err)
	return body
}

func TestParseEventCallback_EncryptedURLVerification(t *testing.T) {
	body := encryptedBody(t, "test key", `{"challenge":"ajls384kdjx98XX","token":"xxxxxx","type":"url_verification"}`)

	cb, err := ParseEventCallback(body, "test key")
	require.NoError(t, err)
	assert.True(t, cb.IsURLVerification())
	assert.Equal(t, "ajls384kdjx98XX", cb.Challenge)
	assert.Equal(t, "xxxxxx", cb.VerificationToken())
}

func TestParseEventCallback_PlainV2Event(t *testing.T) {
	body := []byte(`{
		"schema": "2.0",
		"header": {
			"event_id": "5e3702a84e847582be8db7fb73283c02",
			"event_type": "im.message.receive_v1",
			"create_time": "1608725989000",
			"token": "rvaYgkND1GOiu5MM0E1rncYC6PLtF7JV",
			"app_id": "cli_9f5343c580712544",
			"tenant_key": "2ca1d211f64f6438"
		},
		"event": {"message": {"chat_id": "oc_1"}}
	}`)

	cb, err := ParseEventCallback(body, "")
	require.NoError(t, err)
	assert.False(t, cb.IsURLVerification())
	assert.Equal(t, "im.message.receive_v1", cb.EventType())
	assert.Equal(t, "rvaYgkND1GOiu5MM0E1rncYC6PLtF7JV", cb.VerificationToken())
	assert.JSONEq(t, `{"message": {"chat_id": "oc_1"}}`, string(cb.Event))
}

func TestParseEventCallback_Errors(t *testing.T) {
	_, err := ParseEventCallback(encryptedBody(t, "k", `{}`), "")
	assert.True(t, errors.Is(err, ErrEncryptKeyRequired))

	_, err = ParseEventCallback([]byte("not json"), "k")
	assert.Error(t, err)

	_, err = ParseEventCallback(encryptedBody(t, "right", `{"type":"url_verification"}`), "wrong")
	assert.Error(t, err)
}

func TestVerifyEventSignature(t *testing.T) {
	body := []byte(`{"encrypt":"abc"}`)
	header := http.Header{}
	header.Set(HeaderRequestTimestamp, "1700000000")
	header.Set(HeaderRequestNonce, "nonce")
	header.Set(HeaderSignature, utils.SHA256Hex("1700000000", "nonce", "key", string(body)))

	assert.True(t, VerifyEventSignature(header, "key", body))
	assert.False(t, VerifyEventSignature(header, "other", body))
	assert.False(t, VerifyEventSignature(header, "key", []byte(`{"encrypt":"abd"}`)))
	assert.False(t, VerifyEventSignature(http.Header{}, "key", body))
}
