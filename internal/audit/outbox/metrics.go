package outbox

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the relay. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	PendingDepth    prometheus.Gauge
	PublishedTotal  prometheus.Counter
	PublishFailures prometheus.Counter
	PublishDuration prometheus.Histogram
	BatchSize       prometheus.Histogram
}

// NewMetrics registers relay collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PendingDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "carebridge_audit_outbox_pending",
			Help: "Current number of audit events waiting to be relayed",
		}),
		PublishedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "carebridge_audit_outbox_published_total",
			Help: "Total number of audit events relayed to Kafka",
		}),
		PublishFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "carebridge_audit_outbox_publish_failures_total",
			Help: "Total number of failed relay attempts",
		}),
		PublishDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "carebridge_audit_outbox_publish_duration_seconds",
			Help:    "Time taken to relay one audit event",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		BatchSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "carebridge_audit_outbox_batch_size",
			Help:    "Number of entries relayed per poll",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
	}
}

func (m *Metrics) setPending(n int64) {
	if m != nil {
		m.PendingDepth.Set(float64(n))
	}
}

func (m *Metrics) incPublished() {
	if m != nil {
		m.PublishedTotal.Inc()
	}
}

func (m *Metrics) incFailure() {
	if m != nil {
		m.PublishFailures.Inc()
	}
}

func (m *Metrics) observePublish(seconds float64) {
	if m != nil {
		m.PublishDuration.Observe(seconds)
	}
}

func (m *Metrics) observeBatch(n int) {
	if m != nil {
		m.BatchSize.Observe(float64(n))
	}
}
