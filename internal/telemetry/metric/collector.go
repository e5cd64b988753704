// Package metric provides Prometheus metrics for rudis.
package metric

import "github.com/prometheus/client_golang/prometheus"

// Stats is a point-in-time view of the store.
type Stats struct {
	Keys           int
	Expirations    int
	PubSubChannels int
}

// StatsSource is implemented by the in-memory store.
type StatsSource interface {
	Stats() Stats
}

// Collector reports live store gauges on every scrape.
type Collector struct {
	src StatsSource

	keys        *prometheus.Desc
	expirations *prometheus.Desc
	channels    *prometheus.Desc
}

// NewCollector creates a collector reading from src.
func NewCollector(src StatsSource) *Collector {
	return &Collector{
		src: src,
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "", "keys"),
			"Number of keys currently stored.", nil, nil),
		expirations: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "", "expirations_pending"),
			"Number of keys with a pending expiration.", nil, nil),
		channels: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "", "pubsub_channels"),
			"Number of pub/sub channels with at least one subscriber.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
	ch <- c.expirations
	ch <- c.channels
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(st.Keys))
	ch <- prometheus.MustNewConstMetric(c.expirations, prometheus.GaugeValue, float64(st.Expirations))
	ch <- prometheus.MustNewConstMetric(c.channels, prometheus.GaugeValue, float64(st.PubSubChannels))
}
