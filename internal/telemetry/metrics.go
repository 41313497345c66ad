package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the tutor gateway.
type Metrics struct {
	RequestTotal        *prometheus.CounterVec
	RequestDurationMs   *prometheus.HistogramVec
	UpstreamDurationMs  *prometheus.HistogramVec
	ClassificationTotal *prometheus.CounterVec
	RateLimitDenied     prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_request_total",
			Help: "Total number of requests processed by the gateway.",
		}, []string{"endpoint", "status", "code"}),

		RequestDurationMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tutor_request_duration_ms",
			Help:    "Total request duration in milliseconds (including upstream latency).",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		}, []string{"endpoint"}),

		UpstreamDurationMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tutor_upstream_duration_ms",
			Help:    "Upstream call duration in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		}, []string{"endpoint"}),

		ClassificationTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_classification_total",
			Help: "Agent selections by the intent classifier.",
		}, []string{"agent", "rule"}),

		RateLimitDenied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tutor_ratelimit_denied_total",
			Help: "Requests rejected by the rate limiter.",
		}),
	}
}

// RequestLabels holds the label values for recording a completed request.
type RequestLabels struct {
	Endpoint           string
	Status             string
	Code               string
	DurationMs         float64
	UpstreamDurationMs float64
}

// RecordRequest records metrics for a completed request.
func (m *Metrics) RecordRequest(labels RequestLabels) {
	m.RequestTotal.WithLabelValues(labels.Endpoint, labels.Status, labels.Code).Inc()
	m.RequestDurationMs.WithLabelValues(labels.Endpoint).Observe(labels.DurationMs)
	if labels.UpstreamDurationMs > 0 {
		m.UpstreamDurationMs.WithLabelValues(labels.Endpoint).Observe(labels.UpstreamDurationMs)
	}
}

// RecordClassification records an agent selection.
func (m *Metrics) RecordClassification(agent, rule string) {
	m.ClassificationTotal.WithLabelValues(agent, rule).Inc()
}

// RecordRateLimitDenied records a rate limited request.
func (m *Metrics) RecordRateLimitDenied() {
	m.RateLimitDenied.Inc()
}
