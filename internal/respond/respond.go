// internal/respond/respond.go
//
// JSON response envelopes.
//
// Context
// -------
// Every handler finishes with exactly one of:
//
//   • OK(w, data)   – 200 and {"data", "message": "success", "timestamp"}.
//   • Error(w, err) – the taxonomy status and {"status", "message",
//                     "detail", "instance", "timestamp"}.
//
// Error is the single rendering chokepoint for failures.  It converts err
// with apperr.From, logs it once (error for 5xx, warn otherwise), counts it,
// and builds the body through NewErrorBody, which owns the rule that a 5xx
// body never carries a detail.
//
// Notes
// -----
//   • `instance` is reserved for request-id correlation and is always
//     omitted for now.
//   • Timestamps are Unix seconds.

// Package respond writes the JSON success and error envelopes.
package respond

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/adept-api/internal/apperr"
	"github.com/yanizio/adept-api/internal/metrics"
)

// SuccessMessage is the constant message of every success envelope.
const SuccessMessage = "success"

// now is the envelope clock; tests replace it.
var now = time.Now

// Success is the success envelope.
type Success[T any] struct {
	Data      T      `json:"data"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// ErrorBody is the error envelope.
type ErrorBody struct {
	Status    int     `json:"status"`
	Message   string  `json:"message"`
	Detail    *string `json:"detail,omitempty"`
	Instance  *string `json:"instance,omitempty"`
	Timestamp int64   `json:"timestamp"`
}

// NewErrorBody builds the client-visible body for e.  Server errors always
// get a nil Detail, whatever e carries.
func NewErrorBody(e *apperr.Error, at time.Time) ErrorBody {
	status := e.StatusCode()
	body := ErrorBody{
		Status:    status,
		Message:   http.StatusText(status),
		Timestamp: at.Unix(),
	}
	if e.IsServerError() {
		return body
	}
	if d, ok := e.Detail(); ok {
		body.Detail = &d
	}
	return body
}

// Error logs err and writes its envelope.  A nil err is a programming
// mistake and renders as a bare 500.
func Error(w http.ResponseWriter, err error) {
	e := apperr.From(err)
	if e == nil {
		e = apperr.New(apperr.KindInternalServerError)
	}

	fields := []zap.Field{zap.Object("error", e)}
	if err != nil && err != error(e) {
		fields = append(fields, zap.NamedError("cause", err))
	}
	if e.IsServerError() {
		zap.L().Error("internal server error", fields...)
	} else {
		zap.L().Warn("client error", fields...)
	}

	status := e.StatusCode()
	metrics.ErrorResponses.WithLabelValues(strconv.Itoa(status), e.Kind().String()).Inc()
	writeJSON(w, status, NewErrorBody(e, now()))
}

// OK wraps data in the success envelope with status 200.
func OK[T any](w http.ResponseWriter, data T) {
	metrics.SuccessResponses.Inc()
	writeJSON(w, http.StatusOK, Success[T]{
		Data:      data,
		Message:   SuccessMessage,
		Timestamp: now().Unix(),
	})
}

// NotFoundHandler renders unknown routes through the taxonomy.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	Error(w, apperr.NotFound("no route for "+r.URL.Path))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("response encode failed", zap.Int("status", status), zap.Error(err))
	}
}
