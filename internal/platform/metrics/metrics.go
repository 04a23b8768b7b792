// Package metrics registers the Prometheus instrumentation for the hub.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the hub.
type Metrics struct {
	EventsIngested  *prometheus.CounterVec
	EventsRejected  *prometheus.CounterVec
	PagesServed     prometheus.Counter
	RateLimited     prometheus.Counter
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on a specific registerer. Tests pass a fresh
// registry so multiple instances can coexist in one process.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hubgate_events_ingested_total",
			Help: "Events accepted into the stream, labeled by event type.",
		}, []string{"type"}),
		EventsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hubgate_events_rejected_total",
			Help: "Ingestion requests rejected before persistence, labeled by reason.",
		}, []string{"reason"}),
		PagesServed: factory.NewCounter(prometheus.CounterOpts{
			Name: "hubgate_event_pages_served_total",
			Help: "Pages returned by the event query endpoint.",
		}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "hubgate_rate_limited_total",
			Help: "Requests rejected by the hub-api rate limit policy.",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hubgate_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route", "status"}),
	}
}
