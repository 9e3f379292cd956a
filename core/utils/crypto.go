package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	// ErrInvalidBlockSize 无效的块大小
	ErrInvalidBlockSize = errors.New("invalid block size")
	// ErrInvalidIVSize 无效的 IV 长度
	ErrInvalidIVSize = errors.New("invalid iv size")
	// ErrInvalidPKCS7Data 无效的 PKCS7 数据
	ErrInvalidPKCS7Data = errors.New("invalid PKCS7 data")
	// ErrInvalidPKCS7Padding 无效的 PKCS7 填充
	ErrInvalidPKCS7Padding = errors.New("invalid PKCS7 padding")
)

// DecryptBase64WithIVPrefix 解密飞书事件回调的 encrypt 字段。
// 密钥为 SHA-256(encryptKey)，密文 Base64 解码后前 16 字节为 IV。
func DecryptBase64WithIVPrefix(encryptKey, encrypted string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, fmt.Errorf("decode encrypted data: %w", err)
	}
	if len(raw) < aes.BlockSize {
		return nil, ErrInvalidBlockSize
	}

	key := sha256.Sum256([]byte(encryptKey))
	plaintext, err := AESCBCDecrypt(raw[aes.BlockSize:], key[:], raw[:aes.BlockSize])
	if err != nil {
		return nil, fmt.Errorf("aes decrypt: %w", err)
	}
	return plaintext, nil
}

// EncryptBase64WithIVPrefix DecryptBase64WithIVPrefix 的逆操作，IV 随机生成
func EncryptBase64WithIVPrefix(encryptKey string, plaintext []byte) (string, error) {
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	key := sha256.Sum256([]byte(encryptKey))
	ciphertext, err := AESCBCEncrypt(plaintext, key[:], iv)
	if err != nil {
		return "", fmt.Errorf("aes encrypt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(append(iv, ciphertext...)), nil
}

// AESCBCDecrypt AES-CBC 解密
func AESCBCDecrypt(ciphertext, key, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return nil, ErrInvalidIVSize
	}

	if len(ciphertext) < aes.BlockSize || len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrInvalidBlockSize
	}

	mode := cipher.NewCBCDecrypter(block, iv)
	plaintext := make([]byte, len(ciphertext))
	mode.CryptBlocks(plaintext, ciphertext)

	return PKCS7Unpad(plaintext, aes.BlockSize)
}

// AESCBCEncrypt AES-CBC 加密
func AESCBCEncrypt(plaintext, key, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return nil, ErrInvalidIVSize
	}

	plaintext = PKCS7Pad(plaintext, aes.BlockSize)

	ciphertext := make([]byte, len(plaintext))
	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(ciphertext, plaintext)

	return ciphertext, nil
}

// PKCS7Pad PKCS7 填充
func PKCS7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	out := make([]byte, len(data), len(data)+padding)
	copy(out, data)
	for range padding {
		out = append(out, byte(padding))
	}
	return out
}

// PKCS7Unpad PKCS7 去填充
func PKCS7Unpad(data []byte, blockSize int) ([]byte, error) {
	length := len(data)
	if length == 0 || length%blockSize != 0 {
		return nil, ErrInvalidPKCS7Data
	}

	padding := int(data[length-1])
	if padding > blockSize || padding == 0 {
		return nil, ErrInvalidPKCS7Padding
	}

	for i := range padding {
		if data[length-1-i] != byte(padding) {
			return nil, ErrInvalidPKCS7Padding
		}
	}

	return data[:length-padding], nil
}
