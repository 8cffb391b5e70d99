// Package metric provides Prometheus metrics for retire-go.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: registry, retirement counters, HTTP request metrics
//   - collector.go: live controller state read at scrape time
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
