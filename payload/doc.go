// Package payload serializes the full session attribute map to and from the
// single stored string: percent-encoded "key=value;" pairs, each value rendered
// through a pluggable [Serializer] (JSON by default).
//
// Whole-payload encryption happens above this package, in the Manager. The
// encoded string here is plaintext.
//
// # What this package must NOT do
//
//   - Silently drop malformed segments: a segment without '=' is a hard decode
//     error, since dropping it would corrupt session state without a trace.
//   - Import goSession, token, or store (no upward imports).
package payload
