// internal/observability/metrics.go
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the acquisition-side instruments. All methods are
// nil-safe so the core runs unchanged with metrics disabled.
type Metrics struct {
	samplesEmitted  prometheus.Counter
	invalidChannels prometheus.Counter
	decodeErrors    prometheus.Counter
	retries         prometheus.Counter
	pollLatency     prometheus.Histogram
}

// New registers the acquisition metrics on reg (DefaultRegisterer when
// nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		samplesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thermalog_samples_emitted_total",
			Help: "Samples decoded and handed to the consumer.",
		}),
		invalidChannels: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thermalog_invalid_channels_total",
			Help: "Channel readings the device flagged with its error marker.",
		}),
		decodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thermalog_decode_errors_total",
			Help: "Response frames that did not match the expected structure.",
		}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thermalog_poll_retries_total",
			Help: "Command retries after a timeout or I/O error.",
		}),
		pollLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "thermalog_poll_roundtrip_seconds",
			Help:    "Command/response round-trip time per poll.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}

	reg.MustRegister(m.samplesEmitted, m.invalidChannels, m.decodeErrors, m.retries, m.pollLatency)

	return m
}

// SampleEmitted records one emitted sample and how many of its channels
// were invalid.
func (m *Metrics) SampleEmitted(invalidChannels int) {
	if m == nil {
		return
	}
	m.samplesEmitted.Inc()
	m.invalidChannels.Add(float64(invalidChannels))
}

// DecodeError records one structurally bad frame.
func (m *Metrics) DecodeError() {
	if m == nil {
		return
	}
	m.decodeErrors.Inc()
}

// Retry records one bounded retry attempt.
func (m *Metrics) Retry() {
	if m == nil {
		return
	}
	m.retries.Inc()
}

// ObservePoll records one command round-trip.
func (m *Metrics) ObservePoll(seconds float64) {
	if m == nil {
		return
	}
	m.pollLatency.Observe(seconds)
}
