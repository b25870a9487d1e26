package reactive

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks write and render statistics across states.
type Metrics struct {
	mu sync.RWMutex

	// Per-property counts keyed "state/property"
	propertyStats map[string]*PropertyStats

	// Prometheus collectors
	writesTotal        *prometheus.CounterVec
	rejectedTotal      *prometheus.CounterVec
	watcherErrorsTotal *prometheus.CounterVec
	rendersTotal       *prometheus.CounterVec
	renderErrorsTotal  *prometheus.CounterVec
	writeDuration      *prometheus.HistogramVec
	boundTargets       *prometheus.GaugeVec

	registerer prometheus.Registerer
	registered bool
}

// PropertyStats holds counters for a single state property.
type PropertyStats struct {
	Writes        uint64    `json:"writes"`
	Rejected      uint64    `json:"rejected"`
	WatcherErrors uint64    `json:"watcher_errors"`
	Renders       uint64    `json:"renders"`
	RenderErrors  uint64    `json:"render_errors"`
	LastChangeID  string    `json:"last_change_id,omitempty"`
	LastWriteAt   time.Time `json:"last_write_at,omitempty"`
}

// MetricsSnapshot provides a point-in-time view of write metrics.
type MetricsSnapshot struct {
	TotalWrites   uint64                    `json:"total_writes"`
	TotalRejected uint64                    `json:"total_rejected"`
	PropertyStats map[string]*PropertyStats `json:"property_stats"`
	CollectedAt   time.Time                 `json:"collected_at"`
}

// newBindingCounterVec creates a counter vec with the standard
// stateflow/binding namespace.
func newBindingCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stateflow",
			Subsystem: "binding",
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// newBindingGaugeVec creates a gauge vec with the standard stateflow/binding
// namespace.
func newBindingGaugeVec(name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "stateflow",
			Subsystem: "binding",
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// newBindingHistogramVec creates a histogram vec with the standard
// stateflow/binding namespace.
func newBindingHistogramVec(name, help string, buckets []float64, labels []string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stateflow",
			Subsystem: "binding",
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}

// NewMetrics creates a new write metrics collector.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Metrics{
		propertyStats:      make(map[string]*PropertyStats),
		registerer:         registerer,
		writesTotal:        newBindingCounterVec("writes_total", "Total number of property writes committed", []string{"state", "property"}),
		rejectedTotal:      newBindingCounterVec("rejected_total", "Total number of writes vetoed by a watcher", []string{"state", "property"}),
		watcherErrorsTotal: newBindingCounterVec("watcher_errors_total", "Total number of writes aborted by a watcher error", []string{"state", "property"}),
		rendersTotal:       newBindingCounterVec("renders_total", "Total number of successful target renders", []string{"state", "property", "target"}),
		renderErrorsTotal:  newBindingCounterVec("render_errors_total", "Total number of failed target renders", []string{"state", "property", "target"}),
		writeDuration:      newBindingHistogramVec("write_duration_seconds", "Time from write start to completed fan-out", []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01, 0.1, 1}, []string{"state", "property"}),
		boundTargets:       newBindingGaugeVec("bound_targets", "Current number of live bindings per state", []string{"state"}),
	}
}

// Register registers the Prometheus collectors. Safe to call multiple times.
func (m *Metrics) Register() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	collectors := []prometheus.Collector{
		m.writesTotal,
		m.rejectedTotal,
		m.watcherErrorsTotal,
		m.rendersTotal,
		m.renderErrorsTotal,
		m.writeDuration,
		m.boundTargets,
	}

	for _, c := range collectors {
		if err := m.registerer.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}

	m.registered = true
	return nil
}

// RecordWrite records a committed write, vetoed or not.
func (m *Metrics) RecordWrite(state, property, changeID string, rejected bool, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.getOrCreatePropertyStats(state, property)
	stats.Writes++
	stats.LastChangeID = changeID
	stats.LastWriteAt = time.Now()
	if rejected {
		stats.Rejected++
	}

	m.writesTotal.WithLabelValues(state, property).Inc()
	if rejected {
		m.rejectedTotal.WithLabelValues(state, property).Inc()
	}
	m.writeDuration.WithLabelValues(state, property).Observe(duration.Seconds())
}

// RecordWatcherError records a write aborted before commit.
func (m *Metrics) RecordWatcherError(state, property string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.getOrCreatePropertyStats(state, property)
	stats.WatcherErrors++

	m.watcherErrorsTotal.WithLabelValues(state, property).Inc()
}

// RecordRender records one successful target render during fan-out.
func (m *Metrics) RecordRender(state, property, targetKind string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.getOrCreatePropertyStats(state, property)
	stats.Renders++

	m.rendersTotal.WithLabelValues(state, property, targetKind).Inc()
}

// RecordRenderError records one failed target render during fan-out.
func (m *Metrics) RecordRenderError(state, property, targetKind string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.getOrCreatePropertyStats(state, property)
	stats.RenderErrors++

	m.renderErrorsTotal.WithLabelValues(state, property, targetKind).Inc()
}

// RecordBinding tracks a new live binding on a state.
func (m *Metrics) RecordBinding(state string) {
	m.boundTargets.WithLabelValues(state).Inc()
}

// RecordUnbinding tracks a removed binding on a state.
func (m *Metrics) RecordUnbinding(state string) {
	m.boundTargets.WithLabelValues(state).Dec()
}

// GetSnapshot returns a point-in-time snapshot of all write metrics.
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := MetricsSnapshot{
		PropertyStats: make(map[string]*PropertyStats),
		CollectedAt:   time.Now(),
	}

	for key, stats := range m.propertyStats {
		statsCopy := *stats
		snapshot.PropertyStats[key] = &statsCopy
		snapshot.TotalWrites += stats.Writes
		snapshot.TotalRejected += stats.Rejected
	}

	return snapshot
}

// GetPropertyStats returns a copy of the counters for one property, or nil
// when the property has never been written.
func (m *Metrics) GetPropertyStats(state, property string) *PropertyStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if stats, ok := m.propertyStats[state+"/"+property]; ok {
		statsCopy := *stats
		return &statsCopy
	}
	return nil
}

func (m *Metrics) getOrCreatePropertyStats(state, property string) *PropertyStats {
	key := state + "/" + property
	if stats, ok := m.propertyStats[key]; ok {
		return stats
	}
	stats := &PropertyStats{}
	m.propertyStats[key] = stats
	return stats
}

// Reset resets all metrics (useful for testing).
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.propertyStats = make(map[string]*PropertyStats)
	m.writesTotal.Reset()
	m.rejectedTotal.Reset()
	m.watcherErrorsTotal.Reset()
	m.rendersTotal.Reset()
	m.renderErrorsTotal.Reset()
	m.writeDuration.Reset()
	m.boundTargets.Reset()
}
