package goSession

import "errors"

var (
	// ErrPayloadCorrupt is returned by Load when a stored session payload cannot be
	// decrypted or decoded. A corrupt entry is evidence of a key collision or an
	// algorithm mismatch and is never treated as a benign cache miss.
	ErrPayloadCorrupt = errors.New("session payload corrupt")
	// ErrManagerNotReady is an exported constant or variable used by the session manager.
	ErrManagerNotReady = errors.New("manager not initialized")
	// ErrSessionIDCollision is an exported constant or variable used by the session manager.
	ErrSessionIDCollision = errors.New("stored session id does not match token")
)
