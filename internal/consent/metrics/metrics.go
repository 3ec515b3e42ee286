package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for consent operations. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	RequestsCreated   prometheus.Counter
	Transitions       *prometheus.CounterVec
	AccessDecisions   *prometheus.CounterVec
	AccessesRecorded  prometheus.Counter
	SweepRuns         prometheus.Counter
	SweepExpired      prometheus.Counter
	SweepDuration     prometheus.Histogram
	OperationLatency  *prometheus.HistogramVec
	ConflictRetries   *prometheus.CounterVec
	ShardLockWait     prometheus.Histogram
	ShardLockAcquired prometheus.Counter

	// Collaborator metrics
	PatientCacheLookups *prometheus.CounterVec
	AuditDropped        prometheus.Counter
}

// New registers consent collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "carebridge_consent_requests_created_total",
			Help: "Total number of consent requests created",
		}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "carebridge_consent_transitions_total",
			Help: "Consent request state transitions, labeled by source and target status",
		}, []string{"from", "to"}),
		AccessDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "carebridge_consent_access_decisions_total",
			Help: "Access checks, labeled by decision and denial reason",
		}, []string{"decision", "reason"}),
		AccessesRecorded: f.NewCounter(prometheus.CounterOpts{
			Name: "carebridge_consent_accesses_recorded_total",
			Help: "Total number of access records appended to the usage ledger",
		}),
		SweepRuns: f.NewCounter(prometheus.CounterOpts{
			Name: "carebridge_consent_sweep_runs_total",
			Help: "Total number of expiry sweeps",
		}),
		SweepExpired: f.NewCounter(prometheus.CounterOpts{
			Name: "carebridge_consent_sweep_expired_total",
			Help: "Total number of consent requests expired by sweeps",
		}),
		SweepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "carebridge_consent_sweep_duration_seconds",
			Help:    "Duration of expiry sweeps in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		OperationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carebridge_consent_operation_latency_seconds",
			Help:    "Latency of consent operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
		ConflictRetries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "carebridge_consent_conflict_retries_total",
			Help: "Operations retried after a concurrent modification, labeled by operation",
		}, []string{"operation"}),
		ShardLockWait: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "carebridge_consent_shard_lock_wait_seconds",
			Help:    "Time spent waiting to acquire a per-request shard lock",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		ShardLockAcquired: f.NewCounter(prometheus.CounterOpts{
			Name: "carebridge_consent_shard_lock_acquisitions_total",
			Help: "Total number of shard lock acquisitions",
		}),
		PatientCacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "carebridge_patient_cache_lookups_total",
			Help: "Patient directory cache lookups, labeled by hit or miss",
		}, []string{"result"}),
		AuditDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "carebridge_audit_events_dropped_total",
			Help: "Audit events dropped because the async buffer was full",
		}),
	}
}

func (m *Metrics) IncRequestsCreated() {
	if m == nil {
		return
	}
	m.RequestsCreated.Inc()
}

func (m *Metrics) IncTransition(from, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) IncAccessDecision(allowed bool, reason string) {
	if m == nil {
		return
	}
	decision := "denied"
	if allowed {
		decision = "allowed"
	}
	m.AccessDecisions.WithLabelValues(decision, reason).Inc()
}

func (m *Metrics) IncAccessRecorded() {
	if m == nil {
		return
	}
	m.AccessesRecorded.Inc()
}

func (m *Metrics) ObserveSweep(expired int, took time.Duration) {
	if m == nil {
		return
	}
	m.SweepRuns.Inc()
	m.SweepExpired.Add(float64(expired))
	m.SweepDuration.Observe(took.Seconds())
}

func (m *Metrics) ObserveOperation(op string, start time.Time) {
	if m == nil {
		return
	}
	m.OperationLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncConflictRetry(op string) {
	if m == nil {
		return
	}
	m.ConflictRetries.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveLockWait(d time.Duration) {
	if m == nil {
		return
	}
	m.ShardLockWait.Observe(d.Seconds())
	m.ShardLockAcquired.Inc()
}
