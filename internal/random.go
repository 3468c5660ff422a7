package internal

import (
	"encoding/base64"
	"errors"

	"github.com/google/uuid"
)

// SessionID is 16 bytes of cryptographic randomness. The id doubles as the
// encrypted secret inside the cookie token, so predictability would break
// confidentiality.
type SessionID [16]byte

// NewSessionID mints a random id. uuid.NewRandom reads crypto/rand.
func NewSessionID() (SessionID, error) {
	u, err := uuid.NewRandom()
	return SessionID(u), err
}

func (s SessionID) Bytes() []byte {
	return s[:]
}

func (s SessionID) String() string {
	// base64url, no padding, compact
	return base64.RawURLEncoding.EncodeToString(s[:])
}

// ParseSessionID validates the textual form produced by [SessionID.String].
func ParseSessionID(sessionID string) (SessionID, error) {
	var sid SessionID

	raw, err := base64.RawURLEncoding.DecodeString(sessionID)
	if err != nil {
		return sid, err
	}
	if len(raw) != len(sid) {
		return sid, errors.New("invalid session id size")
	}

	copy(sid[:], raw)
	return sid, nil
}
