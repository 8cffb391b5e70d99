// Package metric provides Prometheus metrics for retire-go.
package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "retire"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Retirement metrics
	Triggers         *prometheus.CounterVec
	IgnoredTriggers  prometheus.Counter
	Cancellations    prometheus.Counter
	RequestsCounted  prometheus.Counter
	Deferral         prometheus.Gauge
	SideEffectErrors *prometheus.CounterVec

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with the retirement and request metrics
// plus the Go runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		Triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triggers_total",
			Help:      "Retirement sequences started, by trigger reason.",
		}, []string{"reason"}),
		IgnoredTriggers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ignored_triggers_total",
			Help:      "Triggers absorbed because a retirement was already in flight.",
		}),
		Cancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cancellations_total",
			Help:      "Retirements cancelled by an observer.",
		}),
		RequestsCounted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_counted_total",
			Help:      "Weighted requests counted toward the retirement threshold.",
		}),
		Deferral: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "deferral_seconds",
			Help:      "Deferral window of the most recent retirement.",
		}),
		SideEffectErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "side_effect_errors_total",
			Help:      "Failed stop-accepting or disconnect calls, by operation.",
		}, []string{"op"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method and status.",
		}, []string{"method", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	reg.MustRegister(
		r.Triggers,
		r.IgnoredTriggers,
		r.Cancellations,
		r.RequestsCounted,
		r.Deferral,
		r.SideEffectErrors,
		r.RequestsTotal,
		r.RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}

// Handler returns an HTTP handler for the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler exposing this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Register adds an extra collector, such as a controller Collector.
func (r *Registry) Register(c prometheus.Collector) error {
	return r.registry.Register(c)
}

// RecordTrigger counts a retirement sequence that actually started.
func (r *Registry) RecordTrigger(reason string) {
	r.Triggers.WithLabelValues(reason).Inc()
}

// RecordIgnoredTrigger counts a trigger absorbed by the in-flight guard.
func (r *Registry) RecordIgnoredTrigger() {
	r.IgnoredTriggers.Inc()
}

// RecordCancellation counts an observer cancellation.
func (r *Registry) RecordCancellation() {
	r.Cancellations.Inc()
}

// AddRequestWeight adds a request's weight to the counted total.
func (r *Registry) AddRequestWeight(weight int64) {
	r.RequestsCounted.Add(float64(weight))
}

// SetDeferral records the deferral window chosen for a retirement.
func (r *Registry) SetDeferral(seconds float64) {
	r.Deferral.Set(seconds)
}

// RecordSideEffectError counts a failed stop-accepting or disconnect call.
func (r *Registry) RecordSideEffectError(op string) {
	r.SideEffectErrors.WithLabelValues(op).Inc()
}

// RecordRequest counts one served HTTP request.
func (r *Registry) RecordRequest(method, status string) {
	r.RequestsTotal.WithLabelValues(method, status).Inc()
}

// ObserveRequestDuration records request latency in seconds.
func (r *Registry) ObserveRequestDuration(method string, seconds float64) {
	r.RequestDuration.WithLabelValues(method).Observe(seconds)
}
