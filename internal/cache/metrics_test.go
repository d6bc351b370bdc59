package cache

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	h := newHarness()
	c := h.open(t, WithMetrics(reg))

	require.NoError(t, c.Set("a", 1, true))
	require.NoError(t, c.Set("b", 2, false))
	_, _ = c.Get("a", true)
	_, _ = c.Get("missing", false)
	c.Delete("b", false)
	c.Flush()

	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.misses))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.metrics.sets))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.deletes))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.flushes))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.diskKeys))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["tiercache_hits_total"])
	assert.True(t, names["tiercache_disk_keys"])
}

func TestMetricsFlushFailureAndDrops(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	h := newHarness()
	h.writeFile(t, `[{"version":1,"key":"old","data":1,"lifetime":0,"epoch":0}]`)
	c := h.open(t, WithMetrics(reg))

	assert.Empty(t, c.Keys())
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.dropped))

	h.files.failWrites = true
	c.Flush()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.flushFailures))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.metrics.flushes))
}

func TestMetricsDuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	h := newHarness()
	h.open(t, WithMetrics(reg))

	_, err := New(h.registry, h.files, testPath, WithMetrics(reg))
	assert.Error(t, err)
}

func TestNilMetricsAreSafe(t *testing.T) {
	t.Parallel()

	var m *cacheMetrics
	m.recordHit()
	m.recordMiss()
	m.recordSets(3)
	m.recordDelete()
	m.recordFlush()
	m.recordFlushFailure()
	m.recordDropped(2)
	m.updateDiskKeys(4)
}
