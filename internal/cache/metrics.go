package cache

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache operations labelled on the errors counter
const (
	OpGet    = "get"
	OpSet    = "set"
	OpDelete = "delete"
	OpStats  = "stats"
)

// Metrics holds the Prometheus counters for the analysis cache.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	Hits         prometheus.Counter
	Misses       prometheus.Counter
	Errors       *prometheus.CounterVec
	Computations prometheus.Counter
	ComputeTime  prometheus.Histogram
}

// NewMetrics creates the metrics on a private registry under namespace
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_cache_hits_total",
			Help:      "Total number of analysis cache hits",
		}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_cache_misses_total",
			Help:      "Total number of analysis cache misses",
		}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_cache_errors_total",
			Help:      "Total number of cache backend failures",
		}, []string{"operation"}),
		Computations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_computations_total",
			Help:      "Total number of analyses computed",
		}),
		ComputeTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_compute_duration_seconds",
			Help:      "Time spent computing an analysis",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),
	}

	m.registry.MustRegister(
		m.Hits,
		m.Misses,
		m.Errors,
		m.Computations,
		m.ComputeTime,
		collectors.NewGoCollector(),
	)

	return m
}

// Registry exposes the private registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hit records a cache hit
func (m *Metrics) Hit() {
	if m != nil {
		m.Hits.Inc()
	}
}

// Miss records a cache miss
func (m *Metrics) Miss() {
	if m != nil {
		m.Misses.Inc()
	}
}

// Error records a backend failure for operation
func (m *Metrics) Error(operation string) {
	if m != nil {
		m.Errors.WithLabelValues(operation).Inc()
	}
}

// Computed records one engine run and how long it took
func (m *Metrics) Computed(d time.Duration) {
	if m != nil {
		m.Computations.Inc()
		m.ComputeTime.Observe(d.Seconds())
	}
}
