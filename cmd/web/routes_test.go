package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yanizio/adept-api/internal/apperr"
)

type fakeStore struct {
	version string
	err     error
}

func (f fakeStore) ServerVersion(context.Context) (string, error) { return f.version, f.err }

func serve(t *testing.T, store versioner, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	core, _ := observer.New(zapcore.DebugLevel)
	t.Cleanup(zap.ReplaceGlobals(zap.New(core)))

	rec := httptest.NewRecorder()
	newRouter(store).ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHello(t *testing.T) {
	rec := serve(t, fakeStore{}, http.MethodGet, "/")
	if rec.Code != http.StatusOK || rec.Body.String() != "Hello, world!" {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("security headers missing")
	}
}

func TestHealthz(t *testing.T) {
	rec := serve(t, fakeStore{version: "PostgreSQL 16.2"}, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var body struct {
		Data    health `json:"data"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Database != "PostgreSQL 16.2" || body.Message != "success" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestHealthzDatabaseDown(t *testing.T) {
	down := fakeStore{err: apperr.NewDatabaseError(errors.New("dial tcp: connection refused"))}
	rec := serve(t, down, http.MethodGet, "/healthz")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("storage detail leaked: %s", rec.Body.String())
	}

	missing := fakeStore{err: apperr.NewDatabaseError(sql.ErrNoRows)}
	if rec := serve(t, missing, http.MethodGet, "/healthz"); rec.Code != http.StatusNotFound {
		t.Fatalf("no rows should be 404, got %d", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	rec := serve(t, fakeStore{}, http.MethodGet, "/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"detail":"no route for /nope"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestMetricsExposed(t *testing.T) {
	serve(t, fakeStore{}, http.MethodGet, "/nope")
	rec := serve(t, fakeStore{}, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "http_error_responses_total") {
		t.Fatalf("metrics missing error counter: %d", rec.Code)
	}
}
