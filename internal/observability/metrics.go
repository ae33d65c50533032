// Package observability defines the Prometheus metrics exposed by the
// assignment engine and geocoder.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// assignment pipeline.
type Metrics struct {
	EventsAssigned *prometheus.CounterVec // labels: tier
	ImpactsScored  prometheus.Counter
	AssignErrors   prometheus.Counter

	AssignmentDuration prometheus.Histogram

	GeocodeRequests *prometheus.CounterVec // labels: outcome={match,no_match,error}
	GeocodeCache    *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates all engine metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh registry so
// repeated construction doesn't collide.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsAssigned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "impact_engine",
			Name:      "events_assigned_total",
			Help:      "Total events assigned, by resolution tier.",
		}, []string{"tier"}),
		ImpactsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "impact_engine",
			Name:      "trade_area_impacts_total",
			Help:      "Total trade-area impact records scored.",
		}),
		AssignErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "impact_engine",
			Name:      "assignment_errors_total",
			Help:      "Total events that failed assignment.",
		}),
		AssignmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "impact_engine",
			Name:      "assignment_duration_seconds",
			Help:      "Duration of a complete geocode-classify-resolve-persist cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "impact_engine",
			Name:      "geocode_requests_total",
			Help:      "Total geocoding requests, by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "impact_engine",
			Name:      "geocode_cache_total",
			Help:      "Geocode cache lookups, by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.EventsAssigned,
		m.ImpactsScored,
		m.AssignErrors,
		m.AssignmentDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
	)

	return m
}
