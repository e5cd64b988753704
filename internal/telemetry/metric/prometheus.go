// Package metric provides Prometheus metrics for rudis.
//
// It exposes metrics in Prometheus format for monitoring
// connection counts, command rates, latencies, and store health.
package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "rudis"

// Command results used as the "result" label.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Registry holds all application metrics.
//
// All recording methods are safe to call on a nil *Registry, which
// lets components run without metrics wired in.
type Registry struct {
	reg *prometheus.Registry

	// Connection metrics
	ConnectionsActive prometheus.Gauge
	ConnectionsTotal  prometheus.Counter
	AcceptRetries     prometheus.Counter

	// Command metrics
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec

	// Store metrics
	KeysExpired     prometheus.Counter
	PubSubPublished prometheus.Counter
	PubSubDropped   prometheus.Counter
}

// NewRegistry creates a metrics registry backed by a private
// prometheus.Registry, with Go runtime and process collectors attached.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "connections_active",
			Help:      "Number of client connections currently being served.",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "connections_total",
			Help:      "Total number of accepted client connections.",
		}),
		AcceptRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "accept_retries_total",
			Help:      "Total number of failed accept calls that were retried.",
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "commands_total",
			Help:      "Total number of commands processed.",
		}, []string{"command", "result"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "command_duration_seconds",
			Help:      "Command execution latency, including the reply write.",
			Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .05, .1},
		}, []string{"command"}),
		KeysExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "keys_expired_total",
			Help:      "Total number of keys removed by the expiration task.",
		}),
		PubSubPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "pubsub_published_total",
			Help:      "Total number of messages queued to subscribers.",
		}),
		PubSubDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "pubsub_dropped_total",
			Help:      "Total number of messages dropped because a subscriber queue was full.",
		}),
	}

	r.reg.MustRegister(
		r.ConnectionsActive,
		r.ConnectionsTotal,
		r.AcceptRetries,
		r.CommandsTotal,
		r.CommandDuration,
		r.KeysExpired,
		r.PubSubPublished,
		r.PubSubDropped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// MustRegister registers additional collectors, such as the store
// Collector, with the underlying registry.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.reg.MustRegister(cs...)
}

// Gatherer exposes the underlying registry for tests and exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// ConnOpened records a newly admitted connection.
func (r *Registry) ConnOpened() {
	if r == nil {
		return
	}
	r.ConnectionsTotal.Inc()
	r.ConnectionsActive.Inc()
}

// ConnClosed records a connection handler exit.
func (r *Registry) ConnClosed() {
	if r == nil {
		return
	}
	r.ConnectionsActive.Dec()
}

// AcceptRetried records a transient accept failure.
func (r *Registry) AcceptRetried() {
	if r == nil {
		return
	}
	r.AcceptRetries.Inc()
}

// ObserveCommand records one processed command.
func (r *Registry) ObserveCommand(name string, err error, elapsed time.Duration) {
	if r == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	r.CommandsTotal.WithLabelValues(name, result).Inc()
	r.CommandDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// AddExpired records keys purged by the expiration task.
func (r *Registry) AddExpired(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.KeysExpired.Add(float64(n))
}

// AddPublished records messages queued for delivery.
func (r *Registry) AddPublished(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.PubSubPublished.Add(float64(n))
}

// AddDropped records messages a slow subscriber missed.
func (r *Registry) AddDropped(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.PubSubDropped.Add(float64(n))
}
