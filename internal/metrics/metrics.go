package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	sessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nexus",
			Subsystem: "session",
			Name:      "total",
			Help:      "Finished engine sessions by operation and completion status.",
		}, []string{"operation", "status"},
	)
	sessionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nexus",
			Subsystem: "session",
			Name:      "duration_seconds",
			Help:      "Wall time from engine launch to session end.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"},
	)
	sessionsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "nexus",
			Subsystem: "session",
			Name:      "in_flight",
			Help:      "Engine sessions currently running.",
		},
	)
	outputTruncated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nexus",
			Subsystem: "session",
			Name:      "output_truncated_total",
			Help:      "Sessions whose captured output hit the byte cap.",
		}, []string{"operation"},
	)
	parsedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nexus",
			Subsystem: "parser",
			Name:      "records_total",
			Help:      "Records extracted from engine output by kind (process, segment).",
		}, []string{"operation", "kind"},
	)
	stateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nexus",
			Subsystem: "session",
			Name:      "state_transitions_total",
			Help:      "Session state machine transitions.",
		}, []string{"from", "to"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{sessionsTotal, sessionDuration, sessionsInFlight, outputTruncated, parsedRecords, stateTransitions}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler serves the default gatherer.
func Handler() http.Handler { return promhttp.Handler() }

// HandlerFor serves g, for collectors registered on a custom registry.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Helpers below no-op until Register has succeeded.

func ObserveSession(operation, status string, seconds float64) {
	if regOK.Load() {
		sessionsTotal.WithLabelValues(operation, status).Inc()
		sessionDuration.WithLabelValues(operation).Observe(seconds)
	}
}

func SessionStarted() {
	if regOK.Load() {
		sessionsInFlight.Inc()
	}
}

func SessionFinished() {
	if regOK.Load() {
		sessionsInFlight.Dec()
	}
}

func IncTruncated(operation string) {
	if regOK.Load() {
		outputTruncated.WithLabelValues(operation).Inc()
	}
}

func AddParsed(operation string, processes, segments int) {
	if regOK.Load() {
		parsedRecords.WithLabelValues(operation, "process").Add(float64(processes))
		parsedRecords.WithLabelValues(operation, "segment").Add(float64(segments))
	}
}

func RecordStateTransition(from, to string) {
	if regOK.Load() {
		stateTransitions.WithLabelValues(from, to).Inc()
	}
}
