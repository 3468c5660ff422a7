package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// AESGCM is the default [Encryption] provider: AES-GCM with a random nonce per
// message, the whole envelope (nonce || sealed) rendered base64url unpadded.
type AESGCM struct {
	aead cipher.AEAD
}

// NewAESGCM creates an AES-GCM provider. The key must be 16, 24, or 32 bytes.
func NewAESGCM(key []byte) (*AESGCM, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm mode: %w", err)
	}

	return &AESGCM{aead: aead}, nil
}

// Encrypt describes the encrypt operation and its observable behavior.
func (p *AESGCM) Encrypt(plaintext string) (string, error) {
	return sealString(p.aead, plaintext)
}

// Decrypt describes the decrypt operation and its observable behavior.
func (p *AESGCM) Decrypt(ciphertext string) (string, error) {
	return openString(p.aead, ciphertext)
}

func sealString(aead cipher.AEAD, plaintext string) (string, error) {
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func openString(aead cipher.AEAD, ciphertext string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	if len(raw) < aead.NonceSize() {
		return "", errors.New("ciphertext shorter than nonce")
	}

	plaintext, err := aead.Open(nil, raw[:aead.NonceSize()], raw[aead.NonceSize():], nil)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}

	return string(plaintext), nil
}
