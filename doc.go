// Package goSession provides server-side HTTP session management backed by Redis,
// with the session identifier carried in an encrypted, HMAC-authenticated cookie.
//
// The package is designed for concurrent server workloads: Manager methods are safe to
// call from multiple goroutines after initialization through [Builder.Build]. Each
// [Session] instance, however, belongs to a single request and must not be shared
// across requests.
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Manager], [Builder], [Config], and the
// [Session] model. Capability packages live alongside it: token (cookie codec),
// payload (attribute serialization), store (Redis persistence), crypto (provider
// contracts and default implementations), middleware (net/http integration).
//
// # What this package must NOT do
//
//   - Expose Redis clients, key layouts, or wire encodings in its public API.
//   - Perform I/O outside of Manager methods (construction via Builder is
//     allocation-only; the Redis connection is dialed lazily on first use).
//   - Serialize two concurrent requests racing on the same session id — last write
//     wins at the store. Session data is a cache of convenience, not a ledger.
//
// # Failure contract
//
// An absent, malformed, or tampered cookie always resolves to an empty session and
// never to an error. Store unavailability and corrupted stored payloads are hard
// failures surfaced to the caller of Load/Save.
package goSession
