// Package httpserver provides the admin HTTP server for rudis.
//
// Routes:
//
//   - GET /healthz: liveness; 503 while the server drains
//   - GET /metrics: Prometheus metrics
//
// The server is disabled by default and should bind to loopback.
package httpserver
