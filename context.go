package goSession

import "context"

type sessionContextKey struct{}

// WithSession attaches a request-scoped [Session] to ctx. The middleware package
// calls this before handing control to the wrapped handler.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the [Session] attached to ctx, if any.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	if ctx == nil {
		return nil, false
	}

	sess, ok := ctx.Value(sessionContextKey{}).(*Session)
	return sess, ok
}
