package crypto

import (
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ChaCha20Poly1305 is an alternative [Encryption] provider using the same
// envelope as [AESGCM]. Useful on targets without AES hardware support.
type ChaCha20Poly1305 struct {
	aead cipher.AEAD
}

// NewChaCha20Poly1305 creates a ChaCha20-Poly1305 provider. The key must be
// exactly 32 bytes.
func NewChaCha20Poly1305(key []byte) (*ChaCha20Poly1305, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("chacha20poly1305: %w", err)
	}

	return &ChaCha20Poly1305{aead: aead}, nil
}

// Encrypt describes the encrypt operation and its observable behavior.
func (p *ChaCha20Poly1305) Encrypt(plaintext string) (string, error) {
	return sealString(p.aead, plaintext)
}

// Decrypt describes the decrypt operation and its observable behavior.
func (p *ChaCha20Poly1305) Decrypt(ciphertext string) (string, error) {
	return openString(p.aead, ciphertext)
}
