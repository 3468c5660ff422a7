// Package store owns the Redis connection and the key layout for persisted
// session payloads. One Store instance is shared process-wide; the underlying
// client is created lazily on first use and reused for every request.
// Reconnecting per request is explicitly not supported.
//
// Absence of a key is not an error: Get reports it through its found result.
// Every infrastructure failure is wrapped with [ErrUnavailable] so callers can
// distinguish it from a cache miss with errors.Is.
package store
