// internal/apperr/apperr.go
//
// Closed application error taxonomy.
//
// Context
// -------
// Every failure that reaches the transport layer is one of nine kinds.  Each
// kind maps to exactly one HTTP status through `StatusCode`, and each value
// may carry a developer-facing detail string.  Lower-level failures
// (storage, password hashing) are converted into an *Error at the boundary
// where they first surface; see storage.go and domain.go.
//
// Notes
// -----
//   • Values are immutable once built.
//   • `ImATeapot` is reserved; no current path produces it.
//   • Oxford commas, two spaces after periods.

// Package apperr defines the closed application error taxonomy.
package apperr

import (
	"fmt"
	"net/http"

	"go.uber.org/zap/zapcore"
)

// Kind identifies one of the nine application error kinds.
type Kind int

const (
	KindBadRequest Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindRequestTimeout
	KindConflict
	KindImATeapot
	KindUnprocessableContent
	KindInternalServerError
)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{
	KindBadRequest,
	KindUnauthorized,
	KindForbidden,
	KindNotFound,
	KindRequestTimeout,
	KindConflict,
	KindImATeapot,
	KindUnprocessableContent,
	KindInternalServerError,
}

// StatusCode returns the fixed HTTP status for k.  Out-of-range values are
// treated as internal errors.
func (k Kind) StatusCode() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRequestTimeout:
		return http.StatusRequestTimeout
	case KindConflict:
		return http.StatusConflict
	case KindImATeapot:
		return http.StatusTeapot
	case KindUnprocessableContent:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindRequestTimeout:
		return "request_timeout"
	case KindConflict:
		return "conflict"
	case KindImATeapot:
		return "im_a_teapot"
	case KindUnprocessableContent:
		return "unprocessable_content"
	default:
		return "internal_server_error"
	}
}

// Error is the application-level error value.  Build it with the
// constructors below; fields are unexported so a value never changes.
type Error struct {
	kind      Kind
	detail    string
	hasDetail bool
}

// New returns an error of the given kind with no detail.
func New(kind Kind) *Error {
	return &Error{kind: kind}
}

// WithDetail returns an error of the given kind carrying detail.
func WithDetail(kind Kind, detail string) *Error {
	return &Error{kind: kind, detail: detail, hasDetail: true}
}

// Newf formats the detail with fmt.Sprintf.
func Newf(kind Kind, format string, args ...any) *Error {
	return WithDetail(kind, fmt.Sprintf(format, args...))
}

func BadRequest(detail string) *Error   { return WithDetail(KindBadRequest, detail) }
func Unauthorized(detail string) *Error { return WithDetail(KindUnauthorized, detail) }
func Forbidden(detail string) *Error    { return WithDetail(KindForbidden, detail) }
func NotFound(detail string) *Error     { return WithDetail(KindNotFound, detail) }
func RequestTimeout(detail string) *Error {
	return WithDetail(KindRequestTimeout, detail)
}
func Conflict(detail string) *Error  { return WithDetail(KindConflict, detail) }
func ImATeapot(detail string) *Error { return WithDetail(KindImATeapot, detail) }
func UnprocessableContent(detail string) *Error {
	return WithDetail(KindUnprocessableContent, detail)
}
func InternalServerError(detail string) *Error {
	return WithDetail(KindInternalServerError, detail)
}

// Kind reports which of the nine kinds e holds.
func (e *Error) Kind() Kind { return e.kind }

// StatusCode returns the HTTP status bound to e's kind.
func (e *Error) StatusCode() int { return e.kind.StatusCode() }

// Detail returns the attached detail and whether one was set.
func (e *Error) Detail() (string, bool) { return e.detail, e.hasDetail }

// IsServerError reports whether the status is in the 5xx range.
func (e *Error) IsServerError() bool { return e.StatusCode() >= 500 }

// Error renders the reason phrase, followed by the detail when present.
func (e *Error) Error() string {
	reason := http.StatusText(e.StatusCode())
	if e.hasDetail {
		return reason + ": " + e.detail
	}
	return reason
}

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, apperr.New(apperr.KindNotFound)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.kind == e.kind
}

// MarshalLogObject lets zap log the full structured value.
func (e *Error) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("kind", e.kind.String())
	enc.AddInt("status", e.StatusCode())
	if e.hasDetail {
		enc.AddString("detail", e.detail)
	}
	return nil
}
