package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// cacheMetrics holds Prometheus metrics for cache operations.
// A nil *cacheMetrics records nothing.
type cacheMetrics struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	sets          prometheus.Counter
	deletes       prometheus.Counter
	flushes       prometheus.Counter
	flushFailures prometheus.Counter
	dropped       prometheus.Counter

	diskKeys prometheus.Gauge
}

func newCacheMetrics(reg prometheus.Registerer) (*cacheMetrics, error) {
	if reg == nil {
		return nil, nil
	}

	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tiercache",
			Name:      name,
			Help:      help,
		})
	}

	m := &cacheMetrics{
		hits:          counter("hits_total", "Total number of cache hits"),
		misses:        counter("misses_total", "Total number of cache misses"),
		sets:          counter("sets_total", "Total number of entries written"),
		deletes:       counter("deletes_total", "Total number of entries deleted"),
		flushes:       counter("flushes_total", "Total number of cache file writes"),
		flushFailures: counter("flush_failures_total", "Total number of failed cache file writes"),
		dropped:       counter("dropped_records_total", "Total number of expired or stale records dropped on load"),
		diskKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tiercache",
			Name:      "disk_keys",
			Help:      "Current number of keys in the disk-backed index",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.hits, m.misses, m.sets, m.deletes, m.flushes, m.flushFailures, m.dropped, m.diskKeys,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *cacheMetrics) recordHit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *cacheMetrics) recordMiss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *cacheMetrics) recordSets(n int) {
	if m != nil {
		m.sets.Add(float64(n))
	}
}

func (m *cacheMetrics) recordDelete() {
	if m != nil {
		m.deletes.Inc()
	}
}

func (m *cacheMetrics) recordFlush() {
	if m != nil {
		m.flushes.Inc()
	}
}

func (m *cacheMetrics) recordFlushFailure() {
	if m != nil {
		m.flushFailures.Inc()
	}
}

func (m *cacheMetrics) recordDropped(n int) {
	if m != nil && n > 0 {
		m.dropped.Add(float64(n))
	}
}

func (m *cacheMetrics) updateDiskKeys(n int) {
	if m != nil {
		m.diskKeys.Set(float64(n))
	}
}
