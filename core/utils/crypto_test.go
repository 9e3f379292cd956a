package utils

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPKCS7PadAndUnpad(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		blockSize int
		wantLen   int
		wantErr   error
	}{
		{
			name:      "pad to block size",
			data:      []byte("hello"),
			blockSize: 8,
			wantLen:   8,
		},
		{
			name:      "already aligned",
			data:      []byte("12345678"),
			blockSize: 8,
			wantLen:   16,
		},
		{
			name:      "invalid block size on unpad",
			data:      []byte{1, 2, 3},
			blockSize: 4,
			wantErr:   ErrInvalidPKCS7Data,
		},
		{
			name:      "invalid padding value",
			data:      []byte{1, 2, 3, 0},
			blockSize: 4,
			wantErr:   ErrInvalidPKCS7Padding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			padded := PKCS7Pad(tt.data, tt.blockSize)
			if tt.wantErr == nil {
				assert.Equal(t, tt.wantLen, len(padded))
			}

			if tt.wantErr != nil {
				_, err := PKCS7Unpad(tt.data, tt.blockSize)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			out, err := PKCS7Unpad(padded, tt.blockSize)
			require.NoError(t, err)
			assert.Equal(t, tt.data, out)
		})
	}
}

func TestAESCBCEncryptDecrypt(t *testing.T) {
	key := []byte("1234567890abcdef")
	iv := []byte("abcdef1234567890")
	plaintext := []byte("secret message")

	ciphertext, err := AESCBCEncrypt(plaintext, key, iv)
	require.NoError(t, err)

	decrypted, err := AESCBCDecrypt(ciphertext, key, iv)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestBase64WithIVPrefixRoundTrip(t *testing.T) {
	payload := map[string]any{
		"challenge": "ajls384kdjx98XX",
		"type":      "url_verification",
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	encrypted, err := EncryptBase64WithIVPrefix("test key", raw)
	require.NoError(t, err)

	tests := []struct {
		name      string
		key       string
		encrypted string
		wantError bool
	}{
		{
			name:      "valid key",
			key:       "test key",
			encrypted: encrypted,
		},
		{
			name:      "invalid base64",
			key:       "test key",
			encrypted: "###",
			wantError: true,
		},
		{
			name:      "too short",
			key:       "test key",
			encrypted: base64.StdEncoding.EncodeToString([]byte("short")),
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plaintext, err := DecryptBase64WithIVPrefix(tt.key, tt.encrypted)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			var got map[string]any
			require.NoError(t, json.Unmarshal(plaintext, &got))
			assert.Equal(t, "ajls384kdjx98XX", got["challenge"])
			assert.Equal(t, "url_verification", got["type"])
		})
	}
}

func TestDecryptBase64WithIVPrefix_WrongKey(t *testing.T) {
	encrypted, err := EncryptBase64WithIVPrefix("right key", []byte(`{"type":"event_callback"}`))
	require.NoError(t, err)

	plaintext, err := DecryptBase64WithIVPrefix("wrong key", encrypted)
	if err == nil {
		assert.NotEqual(t, []byte(`{"type":"event_callback"}`), plaintext)
	}
}

func TestAESCBCDecrypt_InvalidBlockSize(t *testing.T) {
	key := []byte("1234567890abcdef")
	iv := []byte("abcdef1234567890")
	_, err := AESCBCDecrypt([]byte("short"), key, iv)
	assert.ErrorIs(t, err, ErrInvalidBlockSize)
}

func TestAESCBC_InvalidIVSize(t *testing.T) {
	key := []byte("1234567890abcdef")
	plaintext := []byte("secret")
	ciphertext := []byte("1234567890abcdef")
	invalidIV := []byte("short")

	_, err := AESCBCEncrypt(plaintext, key, invalidIV)
	assert.ErrorIs(t, err, ErrInvalidIVSize)

	_, err = AESCBCDecrypt(ciphertext, key, invalidIV)
	assert.ErrorIs(t, err, ErrInvalidIVSize)
}

func TestPKCS7Unpad_InvalidPaddingContent(t *testing.T) {
	data := []byte{1, 2, 3, 4, 2, 2, 2, 3}
	_, err := PKCS7Unpad(data, 8)
	assert.ErrorIs(t, err, ErrInvalidPKCS7Padding)

	data = []byte{1, 2, 3, 4, 9, 9, 9, 9}
	_, err = PKCS7Unpad(data, 8)
	assert.ErrorIs(t, err, ErrInvalidPKCS7Padding)

	// unchanged input on error
	assert.True(t, bytes.Equal([]byte{1, 2, 3, 4, 9, 9, 9, 9}, data))
}
