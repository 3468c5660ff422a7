package crypto

// Encryption is the confidentiality capability consumed by the token codec and
// the session manager. Encrypt returns a cookie-safe string; Decrypt returns an
// error for any input Encrypt did not produce.
//
// Implementations must be immutable after construction and safe for concurrent
// use: one provider instance is shared across all in-flight requests.
type Encryption interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Hmac is the authenticity capability consumed by the token codec. Sum returns
// a tag of exactly TagSize bytes for every message.
//
// Implementations must be immutable after construction and safe for concurrent
// use.
type Hmac interface {
	Sum(message string) []byte
	TagSize() int
}
