// Package metric provides Prometheus metrics for the Hyperlocal client.
//
//   - prometheus.go: private registry and text exposition
//   - collector.go: collector reporting live session state
//
// Metrics include:
//
//   - API request counts by method, route and status class
//   - API request latency histograms
//   - Unauthorized responses and transport failures
//   - Session state changes
//
// The registry is private to the process; the `metrics` command and the
// REPL print it in the Prometheus text format.
package metric
