package imageloader

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestNewMetrics tests the initial state of the metrics collector
func TestNewMetrics(t *testing.T) {
	m := newMetrics()

	stats := m.snapshot()
	assert.Zero(t, stats.MemoryHits)
	assert.Zero(t, stats.DiskHits)
	assert.Zero(t, stats.Joins)
	assert.Zero(t, stats.NetworkFetches)
	assert.Zero(t, stats.Failures)
	assert.Zero(t, stats.Requests)
	assert.Zero(t, stats.HitRate)
	assert.Zero(t, stats.BytesFetched)
	assert.Zero(t, stats.BytesPersisted)
	assert.GreaterOrEqual(t, stats.Uptime, time.Duration(0))
}

// TestMetrics_RecordAndSnapshot tests counter recording and derived fields
func TestMetrics_RecordAndSnapshot(t *testing.T) {
	m := newMetrics()

	m.recordMemoryHit()
	m.recordMemoryHit()
	m.recordDiskHit()
	m.recordJoin()
	m.recordNetworkFetch(1024)
	m.recordPersisted(512)
	m.recordFailure()

	stats := m.snapshot()
	assert.Equal(t, int64(2), stats.MemoryHits)
	assert.Equal(t, int64(1), stats.DiskHits)
	assert.Equal(t, int64(1), stats.Joins)
	assert.Equal(t, int64(1), stats.NetworkFetches)
	assert.Equal(t, int64(1), stats.Failures)
	assert.Equal(t, int64(5), stats.Requests)
	assert.InDelta(t, 4.0/5.0, stats.HitRate, 0.001)
	assert.Equal(t, int64(1024), stats.BytesFetched)
	assert.Equal(t, int64(512), stats.BytesPersisted)
}

// TestMetrics_ByteCountersAccumulate tests that byte counters sum across calls
func TestMetrics_ByteCountersAccumulate(t *testing.T) {
	m := newMetrics()

	m.recordNetworkFetch(100)
	m.recordNetworkFetch(250)
	m.recordNetworkFetch(0) // failed download carries no bytes
	m.recordPersisted(80)
	m.recordPersisted(120)

	stats := m.snapshot()
	assert.Equal(t, int64(3), stats.NetworkFetches)
	assert.Equal(t, int64(350), stats.BytesFetched)
	assert.Equal(t, int64(200), stats.BytesPersisted)
}

// TestMetrics_SnapshotIsolation tests that a snapshot is unaffected by later
// recording
func TestMetrics_SnapshotIsolation(t *testing.T) {
	m := newMetrics()
	m.recordMemoryHit()

	before := m.snapshot()
	m.recordMemoryHit()
	m.recordFailure()

	assert.Equal(t, int64(1), before.MemoryHits)
	assert.Zero(t, before.Failures)

	after := m.snapshot()
	assert.Equal(t, int64(2), after.MemoryHits)
	assert.Equal(t, int64(1), after.Failures)
}

// TestMetrics_ConcurrentRecording tests that concurrent increments are not lost
func TestMetrics_ConcurrentRecording(t *testing.T) {
	m := newMetrics()

	const goroutines = 8
	const perGoroutine = 100

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				m.recordMemoryHit()
				m.recordDiskHit()
				m.recordJoin()
				m.recordNetworkFetch(10)
				m.recordPersisted(5)
				m.recordFailure()
			}
		}()
	}
	wg.Wait()

	const total = int64(goroutines * perGoroutine)
	stats := m.snapshot()
	assert.Equal(t, total, stats.MemoryHits)
	assert.Equal(t, total, stats.DiskHits)
	assert.Equal(t, total, stats.Joins)
	assert.Equal(t, total, stats.NetworkFetches)
	assert.Equal(t, total, stats.Failures)
	assert.Equal(t, 4*total, stats.Requests)
	assert.Equal(t, 10*total, stats.BytesFetched)
	assert.Equal(t, 5*total, stats.BytesPersisted)
}
