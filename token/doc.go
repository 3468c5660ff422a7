// Package token builds and parses the client-visible session credential: the
// base64url HMAC tag of the session id concatenated with the encrypted id, with
// no separator. The fixed-length tag prefix determines the split point.
//
// # Architecture boundaries
//
// This package authenticates and recovers session ids. It does NOT decide what
// an inauthentic token means — that policy belongs to the Manager, which treats
// rejection identically to an absent cookie.
//
// # What this package must NOT do
//
//   - Import goSession, payload, or store (no upward imports).
//   - Return errors for malformed input: a bad token is (id, false), never a failure.
package token
