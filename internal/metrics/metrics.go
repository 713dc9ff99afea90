// Package metrics records per-operation counters for the service client.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector receives service client events.
type Collector interface {
	// RecordAttempt counts one completion round trip for op.
	RecordAttempt(op string)
	// RecordInBandError counts a provider-reported error for op.
	RecordInBandError(op string)
	// RecordTransportError counts a failed round trip for op.
	RecordTransportError(op string)
	// RecordOperation observes the duration of a finished operation.
	RecordOperation(op, status string, d time.Duration)
}

// Operation status labels.
const (
	StatusOK        = "ok"
	StatusExhausted = "exhausted"
	StatusError     = "error"
)

// PrometheusCollector implements Collector with Prometheus metrics held in
// its own registry.
type PrometheusCollector struct {
	attempts        *prometheus.CounterVec
	inBandErrors    *prometheus.CounterVec
	transportErrors *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	registry        *prometheus.Registry
}

// Compile-time check that PrometheusCollector satisfies Collector.
var _ Collector = (*PrometheusCollector)(nil)

// NewPrometheus creates a collector with a fresh registry.
func NewPrometheus() *PrometheusCollector {
	registry := prometheus.NewRegistry()

	attempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gptservice_attempts_total",
			Help: "Completion round trips by operation",
		},
		[]string{"op"},
	)
	inBandErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gptservice_inband_errors_total",
			Help: "Provider-reported errors inside successful responses, by operation",
		},
		[]string{"op"},
	)
	transportErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gptservice_transport_errors_total",
			Help: "Failed round trips by operation",
		},
		[]string{"op"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gptservice_operation_duration_seconds",
			Help:    "Duration of service client operations by status",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"op", "status"},
	)

	registry.MustRegister(attempts, inBandErrors, transportErrors, duration)

	return &PrometheusCollector{
		attempts:        attempts,
		inBandErrors:    inBandErrors,
		transportErrors: transportErrors,
		duration:        duration,
		registry:        registry,
	}
}

// RecordAttempt implements Collector.
func (c *PrometheusCollector) RecordAttempt(op string) {
	c.attempts.WithLabelValues(op).Inc()
}

// RecordInBandError implements Collector.
func (c *PrometheusCollector) RecordInBandError(op string) {
	c.inBandErrors.WithLabelValues(op).Inc()
}

// RecordTransportError implements Collector.
func (c *PrometheusCollector) RecordTransportError(op string) {
	c.transportErrors.WithLabelValues(op).Inc()
}

// RecordOperation implements Collector.
func (c *PrometheusCollector) RecordOperation(op, status string, d time.Duration) {
	c.duration.WithLabelValues(op, status).Observe(d.Seconds())
}

// Registry returns the Prometheus registry for exposition.
func (c *PrometheusCollector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry in the Prometheus exposition
// format.
func (c *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
