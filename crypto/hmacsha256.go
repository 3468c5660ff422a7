package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
)

// HMACSHA256 is the default [Hmac] provider. Tags are always 32 bytes.
type HMACSHA256 struct {
	key []byte
}

// NewHMACSHA256 creates an HMAC-SHA256 provider with its own copy of key.
func NewHMACSHA256(key []byte) *HMACSHA256 {
	owned := make([]byte, len(key))
	copy(owned, key)
	return &HMACSHA256{key: owned}
}

// Sum describes the sum operation and its observable behavior.
func (p *HMACSHA256) Sum(message string) []byte {
	mac := hmac.New(sha256.New, p.key)
	mac.Write([]byte(message))
	return mac.Sum(nil)
}

// TagSize describes the tagsize operation and its observable behavior.
func (p *HMACSHA256) TagSize() int {
	return sha256.Size
}
