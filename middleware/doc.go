// Package middleware wires goSession into a net/http pipeline. Attach loads the
// session before the wrapped handler runs and commits it back (store write +
// cookie) on the first response write, mirroring the classic pre/post request
// hook pair.
package middleware
