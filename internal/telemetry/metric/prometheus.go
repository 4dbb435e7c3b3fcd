package metric

import (
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

const namespace = "hyperlocal_client"

// Registry holds all client metrics.
type Registry struct {
	reg *prometheus.Registry

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Failure metrics
	UnauthorizedTotal prometheus.Counter
	NetworkErrors     prometheus.Counter

	// Session metrics
	SessionEvents *prometheus.CounterVec
}

// NewRegistry creates a registry with all client metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "API requests by method, route and status class.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "route"}),
		UnauthorizedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unauthorized_responses_total",
			Help:      "Responses with status 401 that cleared the session.",
		}),
		NetworkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "network_errors_total",
			Help:      "Requests that failed before a response arrived.",
		}),
		SessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session changes by kind (login, logout, expired, reload).",
		}, []string{"event"}),
	}

	r.reg.MustRegister(
		r.RequestsTotal,
		r.RequestDuration,
		r.UnauthorizedTotal,
		r.NetworkErrors,
		r.SessionEvents,
	)
	return r
}

// MustRegister adds extra collectors to the registry.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.reg.MustRegister(cs...)
}

// WriteText writes all metrics in the Prometheus text format.
func (r *Registry) WriteText(w io.Writer) error {
	mfs, err := r.reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}

// Handler returns an HTTP handler serving the registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// StatusClass buckets an HTTP status code ("2xx", "4xx", ...). Zero means
// no response was received.
func StatusClass(code int) string {
	if code <= 0 {
		return "error"
	}
	return fmt.Sprintf("%dxx", code/100)
}
