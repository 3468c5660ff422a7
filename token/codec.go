package token

import (
	"crypto/hmac"
	"encoding/base64"

	"github.com/MrEthical07/goSession/crypto"
)

var encoding = base64.RawURLEncoding

// Codec builds and parses session tokens from a fixed provider pair. It is
// stateless and safe for concurrent use.
type Codec struct {
	enc crypto.Encryption
	mac crypto.Hmac

	// prefixLen is the base64 length of one tag; everything past it is ciphertext.
	prefixLen int
}

// NewCodec creates a [Codec] over the given provider pair.
func NewCodec(enc crypto.Encryption, mac crypto.Hmac) *Codec {
	return &Codec{
		enc:       enc,
		mac:       mac,
		prefixLen: encoding.EncodedLen(mac.TagSize()),
	}
}

// Encode builds the token for sessionID: base64url(HMAC(id)) || Encrypt(id).
// Side-effect-free; the same id yields a fresh ciphertext per call (random
// nonce) but an identical tag prefix.
func (c *Codec) Encode(sessionID string) (string, error) {
	tag := c.mac.Sum(sessionID)

	ciphertext, err := c.enc.Encrypt(sessionID)
	if err != nil {
		return "", err
	}

	return encoding.EncodeToString(tag) + ciphertext, nil
}

// Decode splits tok at the fixed tag offset, decrypts the suffix to recover the
// claimed session id, and recomputes the tag over it. The recovered id is
// returned even when authentication fails; authentic reports whether the tag
// matched. Tag comparison is constant-time over the full tag length.
//
// Malformed tokens (too short, undecodable prefix, decryption failure) yield
// ("", false). Callers must treat that identically to an absent cookie.
func (c *Codec) Decode(tok string) (sessionID string, authentic bool) {
	if len(tok) < c.prefixLen {
		return "", false
	}

	claimed, err := encoding.DecodeString(tok[:c.prefixLen])
	if err != nil || len(claimed) != c.mac.TagSize() {
		return "", false
	}

	sessionID, err = c.enc.Decrypt(tok[c.prefixLen:])
	if err != nil {
		return "", false
	}

	// hmac.Equal never short-circuits on the first mismatching byte.
	return sessionID, hmac.Equal(claimed, c.mac.Sum(sessionID))
}
