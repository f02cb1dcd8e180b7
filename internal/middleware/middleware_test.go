// internal/middleware/middleware_test.go
//
// Unit-tests for the HTTP wrappers.
//
// Context
// -------
// Recover must answer a panic with a detail-free 500 envelope and count it.
// AccessLog must log the final status with the chi request id.  Security
// must set its headers without clobbering handler choices.

package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yanizio/adept-api/internal/metrics"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	t.Cleanup(zap.ReplaceGlobals(zap.New(core)))
	return logs
}

func TestRecoverRendersEnvelope(t *testing.T) {
	logs := observe(t)
	before := testutil.ToFloat64(metrics.PanicsRecovered)

	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("db password is hunter2")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "hunter2") {
		t.Fatalf("panic value leaked to the client: %s", rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := body["detail"]; ok || body["message"] != "Internal Server Error" {
		t.Fatalf("unexpected body %v", body)
	}

	if got := testutil.ToFloat64(metrics.PanicsRecovered); got != before+1 {
		t.Fatalf("panic counter not incremented")
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Fatalf("panic not logged: %+v", logs.All())
	}
}

func TestRecoverAfterResponseStarted(t *testing.T) {
	logs := observe(t)
	errBefore := testutil.ToFloat64(metrics.ErrorResponses.WithLabelValues("500", "internal_server_error"))
	panicsBefore := testutil.ToFloat64(metrics.PanicsRecovered)

	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":`))
		panic("half-way")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want the handler's 200", rec.Code)
	}
	if got := rec.Body.String(); got != `{"data":` {
		t.Fatalf("a second envelope was appended: %q", got)
	}
	if got := testutil.ToFloat64(metrics.ErrorResponses.WithLabelValues("500", "internal_server_error")); got != errBefore {
		t.Fatalf("error counter moved for a response never sent: %v -> %v", errBefore, got)
	}
	if got := testutil.ToFloat64(metrics.PanicsRecovered); got != panicsBefore+1 {
		t.Fatalf("panic counter not incremented")
	}
	entries := logs.FilterMessage("panic recovered").All()
	if len(entries) != 1 || entries[0].ContextMap()["response_started"] != true {
		t.Fatalf("expected one panic entry flagged as started, got %+v", logs.All())
	}
}

func TestRecoverReraisesAbort(t *testing.T) {
	observe(t)
	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Fatalf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestRecoverPassThrough(t *testing.T) {
	observe(t)
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status %d, want 418", rec.Code)
	}
}

func TestAccessLog(t *testing.T) {
	logs := observe(t)

	h := chimw.RequestID(AccessLog(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("hello"))
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/things", nil))

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one access line, got %+v", logs.All())
	}
	f := entries[0].ContextMap()
	if f["method"] != "POST" || f["path"] != "/things" {
		t.Fatalf("unexpected fields %v", f)
	}
	if f["status"] != int64(http.StatusCreated) || f["bytes"] != int64(5) {
		t.Fatalf("unexpected status/bytes %v", f)
	}
	if id, _ := f["request_id"].(string); id == "" {
		t.Fatalf("request id missing")
	}
}

func TestAccessLogImplicitOK(t *testing.T) {
	logs := observe(t)
	h := AccessLog(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	f := logs.All()[0].ContextMap()
	if f["status"] != int64(http.StatusOK) {
		t.Fatalf("handlers that never write report 200, got %v", f["status"])
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := Security(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Cache-Control", "max-age=60")
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	for _, kv := range securityHeaders {
		if kv[0] == "Cache-Control" {
			continue
		}
		if got := rec.Header().Get(kv[0]); got != kv[1] {
			t.Errorf("%s = %q, want %q", kv[0], got, kv[1])
		}
	}
	if got := rec.Header().Get("Cache-Control"); got != "max-age=60" {
		t.Fatalf("handler override lost, got %q", got)
	}
}

func TestChainPanicIsLoggedAs500(t *testing.T) {
	logs := observe(t)
	h := AccessLog(Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(errors.New("nil map"))
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 || entries[0].ContextMap()["status"] != int64(500) {
		t.Fatalf("access log should record 500, got %+v", logs.All())
	}
}
