// internal/metrics/metrics.go
//
// Prometheus instruments shared by the HTTP layer.
//
// Context
// -------
// All collectors are registered with the global registry in init(), so
// exposing promhttp.Handler() on /metrics is enough to publish them.
//
// Notes
// -----
//   - respond.Error labels every error envelope by status and error kind.
//   - Recover counts panics whether or not an envelope could be written.

// Package metrics holds Prometheus instruments shared by the HTTP layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ErrorResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_error_responses_total",
			Help: "Error envelopes rendered, by HTTP status and error kind.",
		},
		[]string{"status", "kind"},
	)

	SuccessResponses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "http_success_responses_total",
			Help: "Success envelopes rendered.",
		})

	PanicsRecovered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "http_panics_recovered_total",
			Help: "Handler panics converted into 500 responses.",
		})
)

func init() {
	prometheus.MustRegister(
		ErrorResponses,
		SuccessResponses,
		PanicsRecovered,
	)
}
