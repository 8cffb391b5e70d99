package metric

import "github.com/prometheus/client_golang/prometheus"

// StatusSource reports the live state of a retirement controller.
type StatusSource interface {
	StateName() string
	RequestCount() int64
}

// Collector exports a StatusSource at scrape time, so the values never lag
// behind the controller.
type Collector struct {
	source StatusSource

	stateDesc *prometheus.Desc
	countDesc *prometheus.Desc
}

// States lists every state name the collector emits a series for.
var States = []string{"armed", "pending", "terminating", "exited", "disarmed", "delegated"}

// NewCollector creates a collector reading from source.
func NewCollector(source StatusSource) *Collector {
	return &Collector{
		source: source,
		stateDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "state"),
			"Current retirement state; 1 for the active state, 0 otherwise.",
			[]string{"state"}, nil,
		),
		countDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "request_count"),
			"Weighted request count toward the retirement threshold.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.stateDesc
	ch <- c.countDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	current := c.source.StateName()
	for _, s := range States {
		v := 0.0
		if s == current {
			v = 1
		}
		ch <- prometheus.MustNewConstMetric(c.stateDesc, prometheus.GaugeValue, v, s)
	}
	ch <- prometheus.MustNewConstMetric(c.countDesc, prometheus.GaugeValue, float64(c.source.RequestCount()))
}
