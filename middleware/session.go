package middleware

import (
	"context"
	"net/http"

	goSession "github.com/MrEthical07/goSession"
)

// Attach returns middleware that resolves the request's session via
// [goSession.Manager.Load], exposes it through the request context
// ([goSession.SessionFromContext]), and saves it back on the way out.
//
// The save runs just before the first WriteHeader/Write so the cookie can still
// make it into the response headers; handlers must finish mutating the session
// before writing the response body. Handlers that never write are committed
// after they return.
func Attach(manager *goSession.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := manager.Load(r)
			if err != nil {
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}

			ctx := goSession.WithSession(r.Context(), sess)
			cw := &commitWriter{
				ResponseWriter: w,
				manager:        manager,
				sess:           sess,
				ctx:            ctx,
			}

			next.ServeHTTP(cw, r.WithContext(ctx))
			cw.commit()
		})
	}
}

// commitWriter saves the session immediately before the response is first
// written, so Set-Cookie still lands in the headers.
type commitWriter struct {
	http.ResponseWriter
	manager   *goSession.Manager
	sess      *goSession.Session
	ctx       context.Context
	committed bool
}

func (cw *commitWriter) WriteHeader(statusCode int) {
	cw.commit()
	cw.ResponseWriter.WriteHeader(statusCode)
}

func (cw *commitWriter) Write(b []byte) (int, error) {
	cw.commit()
	return cw.ResponseWriter.Write(b)
}

func (cw *commitWriter) commit() {
	if cw.committed {
		return
	}
	cw.committed = true

	// Past this point the status line may already be on the wire, so a failed
	// save cannot change the response. The Manager has already counted and
	// audited the failure; the session is simply not persisted.
	_ = cw.manager.Save(cw.ctx, cw.sess, cw.ResponseWriter)
}

