package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()

	if m.RequestTotal == nil {
		t.Error("RequestTotal should not be nil")
	}
	if m.RequestDurationMs == nil {
		t.Error("RequestDurationMs should not be nil")
	}
	if m.UpstreamDurationMs == nil {
		t.Error("UpstreamDurationMs should not be nil")
	}
	if m.ClassificationTotal == nil {
		t.Error("ClassificationTotal should not be nil")
	}
	if m.RateLimitDenied == nil {
		t.Error("RateLimitDenied should not be nil")
	}
}

func TestRecordRequest(t *testing.T) {
	// Use a fresh registry to avoid polluting the default one
	reg := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_tutor_request_total",
		Help: "Test counter",
	}, []string{"endpoint", "status", "code"})

	durationMs := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "test_tutor_request_duration_ms",
		Help:    "Test histogram",
		Buckets: []float64{100, 500, 1000},
	}, []string{"endpoint"})

	upstreamMs := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "test_tutor_upstream_duration_ms",
		Help:    "Test histogram",
		Buckets: []float64{100, 500, 1000},
	}, []string{"endpoint"})

	classificationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_tutor_classification_total",
		Help: "Test counter",
	}, []string{"agent", "rule"})

	denied := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_tutor_ratelimit_denied_total",
		Help: "Test counter",
	})

	reg.MustRegister(requestTotal, durationMs, upstreamMs, classificationTotal, denied)

	m := &Metrics{
		RequestTotal:        requestTotal,
		RequestDurationMs:   durationMs,
		UpstreamDurationMs:  upstreamMs,
		ClassificationTotal: classificationTotal,
		RateLimitDenied:     denied,
	}

	m.RecordRequest(RequestLabels{
		Endpoint:           "chat",
		Status:             "200",
		Code:               "",
		DurationMs:         850,
		UpstreamDurationMs: 700,
	})
	m.RecordClassification("Math Agent", "math")
	m.RecordRateLimitDenied()

	var metric dto.Metric
	if err := requestTotal.WithLabelValues("chat", "200", "").Write(&metric); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 1 {
		t.Errorf("expected request counter 1, got %v", got)
	}

	var classMetric dto.Metric
	if err := classificationTotal.WithLabelValues("Math Agent", "math").Write(&classMetric); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if got := classMetric.GetCounter().GetValue(); got != 1 {
		t.Errorf("expected classification counter 1, got %v", got)
	}

	var deniedMetric dto.Metric
	if err := denied.Write(&deniedMetric); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if got := deniedMetric.GetCounter().GetValue(); got != 1 {
		t.Errorf("expected denied counter 1, got %v", got)
	}
}
