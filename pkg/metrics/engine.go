package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records booking engine health: remote sync outcomes, forced
// add-on removals on tour change, and snapshot load failures.
type EngineMetrics struct {
	syncDuration  *prometheus.HistogramVec
	syncAttempts  *prometheus.CounterVec
	syncFailures  *prometheus.CounterVec
	forcedRemoval prometheus.Counter
	snapshotFails *prometheus.CounterVec
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	syncDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "remote_cart_sync_duration_seconds",
		Help:    "Duration of remote cart sync attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	syncAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "remote_cart_sync_attempts",
		Help: "Remote cart sync attempts, including short-circuited ones.",
	}, []string{"result"})
	syncFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "remote_cart_sync_failures",
		Help: "Failed remote cart sync attempts by reason.",
	}, []string{"reason"})
	forcedRemoval := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_forced_addon_removals",
		Help: "Add-ons removed because a tour change made them incompatible.",
	})
	snapshotFails := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshot_load_failures",
		Help: "Session snapshots that failed to load or parse.",
	}, []string{"slot"})
	reg.MustRegister(syncDuration, syncAttempts, syncFailures, forcedRemoval, snapshotFails)
	return &EngineMetrics{
		syncDuration:  syncDuration,
		syncAttempts:  syncAttempts,
		syncFailures:  syncFailures,
		forcedRemoval: forcedRemoval,
		snapshotFails: snapshotFails,
	}
}

// ObserveSyncDuration records how long a sync attempt took.
func (m *EngineMetrics) ObserveSyncDuration(outcome string, duration time.Duration) {
	if m == nil || m.syncDuration == nil {
		return
	}
	m.syncDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncSyncAttempt counts a sync attempt. Result is one of "started",
// "skipped" (in-flight guard) or "stale" (result discarded).
func (m *EngineMetrics) IncSyncAttempt(result string) {
	if m == nil || m.syncAttempts == nil {
		return
	}
	m.syncAttempts.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncSyncFailure counts a failed sync by reason.
func (m *EngineMetrics) IncSyncFailure(reason string) {
	if m == nil || m.syncFailures == nil {
		return
	}
	m.syncFailures.WithLabelValues(normalizeLabel(reason)).Inc()
}

// AddForcedRemovals counts add-ons dropped on a tour change.
func (m *EngineMetrics) AddForcedRemovals(n int) {
	if m == nil || m.forcedRemoval == nil || n <= 0 {
		return
	}
	m.forcedRemoval.Add(float64(n))
}

// IncSnapshotLoadFailure counts a corrupt or unreadable snapshot slot.
func (m *EngineMetrics) IncSnapshotLoadFailure(slot string) {
	if m == nil || m.snapshotFails == nil {
		return
	}
	m.snapshotFails.WithLabelValues(normalizeLabel(slot)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
