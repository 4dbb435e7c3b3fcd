package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SessionState is the view of the session the collector reads.
type SessionState interface {
	IsAuthenticated() bool
}

// Collector reports the live session state at scrape time.
type Collector struct {
	state         SessionState
	authenticated *prometheus.Desc
}

// NewCollector creates a collector reading from state.
func NewCollector(state SessionState) *Collector {
	return &Collector{
		state: state,
		authenticated: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "authenticated"),
			"1 when a session token is present.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.authenticated
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	v := 0.0
	if c.state != nil && c.state.IsAuthenticated() {
		v = 1
	}
	ch <- prometheus.MustNewConstMetric(c.authenticated, prometheus.GaugeValue, v)
}
