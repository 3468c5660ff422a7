package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const derivedKeySize = 32

// Domain-separation labels. Changing either invalidates every issued token.
const (
	encryptionInfo = "goSession encryption key v1"
	hmacInfo       = "goSession hmac key v1"
)

// DeriveKeys expands a master key into independent encryption and
// authentication keys via HKDF-SHA256. The same master key always yields the
// same pair, so tokens survive process restarts as long as the master key does.
func DeriveKeys(masterKey []byte) (encKey, macKey []byte, err error) {
	if len(masterKey) < 16 {
		return nil, nil, fmt.Errorf("master key too short: %d bytes", len(masterKey))
	}

	encKey = make([]byte, derivedKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, nil, []byte(encryptionInfo)), encKey); err != nil {
		return nil, nil, fmt.Errorf("derive encryption key: %w", err)
	}

	macKey = make([]byte, derivedKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, nil, []byte(hmacInfo)), macKey); err != nil {
		return nil, nil, fmt.Errorf("derive hmac key: %w", err)
	}

	return encKey, macKey, nil
}
