// Package crypto defines the provider contracts consumed by the token codec and
// the session manager, plus default implementations: AES-256-GCM and
// ChaCha20-Poly1305 encryption, HMAC-SHA256 authentication, and HKDF key
// derivation from a single master key.
//
// # Architecture boundaries
//
// This package owns key material and cipher choice. It does NOT know about
// cookies, Redis, or session semantics — callers hand it strings and get
// strings (or tags) back.
//
// # What this package must NOT do
//
//   - Import goSession or any of its sibling packages (no upward imports).
//   - Log, persist, or otherwise expose key material.
package crypto
