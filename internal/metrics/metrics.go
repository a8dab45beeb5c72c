// Package metrics exposes Prometheus instrumentation for the
// conversion pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	Conversions     *prometheus.CounterVec
	Duration        prometheus.Histogram
	DownloadedBytes prometheus.Histogram
	InFlight        prometheus.Gauge
}

// New builds the collectors and registers them on reg. Pass
// prometheus.DefaultRegisterer in production; tests use a private
// registry so parallel tests never collide.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "markitdown",
			Name:      "conversions_total",
			Help:      "Conversion requests by outcome.",
		}, []string{"outcome"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "markitdown",
			Name:      "conversion_duration_seconds",
			Help:      "End to end conversion latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 180},
		}),
		DownloadedBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "markitdown",
			Name:      "downloaded_bytes",
			Help:      "Size of downloaded documents.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "markitdown",
			Name:      "conversions_in_flight",
			Help:      "Conversions currently being processed.",
		}),
	}
	reg.MustRegister(m.Conversions, m.Duration, m.DownloadedBytes, m.InFlight)
	return m
}

// ObserveOutcome records one finished conversion. outcome is "success"
// or an error kind.
func (m *Metrics) ObserveOutcome(outcome string, seconds float64) {
	m.Conversions.WithLabelValues(outcome).Inc()
	m.Duration.Observe(seconds)
}
