// internal/middleware/accesslog.go
//
// Access-log middleware.
//
// Context
// -------
// Writes one structured zap line per request after the handler returns,
// carrying method, path, final status, bytes written, duration, remote
// address, and the chi request id.
//
// Notes
// -----
//   - Wrap it outside Recover so the 500 written after a panic is the
//     status that gets logged.
//   - A handler that never writes is logged as 200, which is what net/http
//     sends for it.

package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// AccessLog writes one structured line per request once the response is
// complete.  The request id comes from chi's RequestID middleware when it
// runs earlier in the chain.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
			zap.String("request_id", chimw.GetReqID(r.Context())))
	})
}
