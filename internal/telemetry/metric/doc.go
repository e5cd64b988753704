// Package metric provides Prometheus metrics for rudis.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Prometheus registry, recording helpers and HTTP handler
//   - collector.go: Custom collector reading live store statistics
//
// Metrics include:
//
//   - Connection gauges and counters
//   - Per-command counters and latency histograms
//   - Key expiration and pub/sub delivery counters
//
// Metrics are exposed at /metrics in Prometheus format by the admin server.
package metric
