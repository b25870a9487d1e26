package reactive

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordWrite(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NoError(t, m.Register())

	m.RecordWrite("panel", "word", "01CHANGE", false, 5*time.Microsecond)
	m.RecordWrite("panel", "word", "02CHANGE", true, 7*time.Microsecond)

	stats := m.GetPropertyStats("panel", "word")
	require.NotNil(t, stats)
	assert.Equal(t, uint64(2), stats.Writes)
	assert.Equal(t, uint64(1), stats.Rejected)
	assert.Equal(t, "02CHANGE", stats.LastChangeID)
	assert.False(t, stats.LastWriteAt.IsZero())
}

func TestMetrics_RecordWatcherError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NoError(t, m.Register())

	m.RecordWatcherError("panel", "word")
	m.RecordWatcherError("panel", "word")

	stats := m.GetPropertyStats("panel", "word")
	require.NotNil(t, stats)
	assert.Equal(t, uint64(2), stats.WatcherErrors)
	assert.Equal(t, uint64(0), stats.Writes)
}

func TestMetrics_RecordRenders(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NoError(t, m.Register())

	m.RecordRender("panel", "word", "display")
	m.RecordRender("panel", "word", "gauge")
	m.RecordRenderError("panel", "word", "display")

	stats := m.GetPropertyStats("panel", "word")
	require.NotNil(t, stats)
	assert.Equal(t, uint64(2), stats.Renders)
	assert.Equal(t, uint64(1), stats.RenderErrors)
}

func TestMetrics_GetSnapshot(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NoError(t, m.Register())

	m.RecordWrite("panel", "word", "01CHANGE", false, time.Microsecond)
	m.RecordWrite("panel", "level", "02CHANGE", true, time.Microsecond)
	m.RecordWrite("sensor", "value", "03CHANGE", false, time.Microsecond)

	snapshot := m.GetSnapshot()
	assert.Equal(t, uint64(3), snapshot.TotalWrites)
	assert.Equal(t, uint64(1), snapshot.TotalRejected)
	assert.Len(t, snapshot.PropertyStats, 3)
	assert.False(t, snapshot.CollectedAt.IsZero())

	// Snapshots are copies, not views.
	snapshot.PropertyStats["panel/word"].Writes = 99
	assert.Equal(t, uint64(1), m.GetPropertyStats("panel", "word").Writes)
}

func TestMetrics_GetPropertyStats_NonExistent(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	assert.Nil(t, m.GetPropertyStats("panel", "never"))
}

func TestMetrics_Reset(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NoError(t, m.Register())

	m.RecordWrite("panel", "word", "01CHANGE", false, time.Microsecond)
	m.Reset()

	snapshot := m.GetSnapshot()
	assert.Empty(t, snapshot.PropertyStats)
	assert.Zero(t, snapshot.TotalWrites)
}

func TestMetrics_Register_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	require.NoError(t, m.Register())
	require.NoError(t, m.Register())
}

func TestMetrics_NilRegisterer(t *testing.T) {
	m := NewMetrics(nil)
	assert.NotNil(t, m)
	// Uses the default registerer; registering here would leak into other tests.
}

func TestMetrics_BindingGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NoError(t, m.Register())

	m.RecordBinding("panel")
	m.RecordBinding("panel")
	m.RecordUnbinding("panel")

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() != "stateflow_binding_bound_targets" {
			continue
		}
		require.Len(t, mf.GetMetric(), 1)
		assert.Equal(t, 1.0, mf.GetMetric()[0].GetGauge().GetValue())
		found = true
	}
	assert.True(t, found, "bound_targets gauge must be exported")
}
