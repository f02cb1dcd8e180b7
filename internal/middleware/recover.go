// internal/middleware/recover.go
//
// Panic-recovery middleware.
//
// Context
// -------
// A panic below this wrapper becomes a 500 error envelope rendered through
// respond.Error, so the client sees the same detail-free body as any other
// server error.  The panic value and stack go to the log only.
//
// Notes
// -----
//   - When the handler already started the response, no envelope is written
//     and no error response is counted.  The panic is logged and counted.
//   - http.ErrAbortHandler is re-raised so net/http aborts the connection.
//   - Oxford commas, two spaces after periods.

package middleware

import (
	"fmt"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yanizio/adept-api/internal/apperr"
	"github.com/yanizio/adept-api/internal/metrics"
	"github.com/yanizio/adept-api/internal/respond"
)

// Recover turns a handler panic into a 500 envelope.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			started := ww.Status() != 0
			metrics.PanicsRecovered.Inc()
			zap.L().Error("panic recovered",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Bool("response_started", started),
				zap.Any("panic", rec),
				zap.Stack("stack"))

			if started {
				return
			}
			respond.Error(ww, apperr.InternalServerError(fmt.Sprint("panic: ", rec)))
		}()
		next.ServeHTTP(ww, r)
	})
}
