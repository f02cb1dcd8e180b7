package main

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/adept-api/internal/middleware"
	"github.com/yanizio/adept-api/internal/respond"
)

// versioner is the part of database.Store the health check needs.
type versioner interface {
	ServerVersion(ctx context.Context) (string, error)
}

type health struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// newRouter wires the middleware chain and routes.  405 keeps chi's default
// handler; there is no error kind for it.
func newRouter(store versioner) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, middleware.AccessLog, middleware.Recover, middleware.Security)
	r.NotFound(respond.NotFoundHandler)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "Hello, world!")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		v, err := store.ServerVersion(r.Context())
		if err != nil {
			respond.Error(w, err)
			return
		}
		respond.OK(w, health{Status: "ok", Database: v})
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}
