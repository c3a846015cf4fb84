package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RequestsClassified *prometheus.CounterVec
	PartialFailures    prometheus.Counter
	ExtractionSeconds  prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		RequestsClassified: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certiva_verification_requests_classified_total",
			Help: "Total verification requests classified, by resulting status",
		}, []string{"status"}),
		PartialFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certiva_verification_partial_failures_total",
			Help: "Classifications computed but not durably recorded; the record is stuck at PROCESSING",
		}),
		ExtractionSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "certiva_verification_extraction_duration_seconds",
			Help:    "Latency of the external extraction oracle call",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncrementClassified(status string) {
	m.RequestsClassified.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementPartialFailures() {
	m.PartialFailures.Inc()
}

func (m *Metrics) ObserveExtraction(seconds float64) {
	m.ExtractionSeconds.Observe(seconds)
}
