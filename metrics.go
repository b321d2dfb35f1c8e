// Package imageloader provides client-side image retrieval and caching.
// This file contains cache statistics collection.
package imageloader

import (
	"sync"
	"time"
)

// metrics collects counters for cache operations.
// All methods are safe for concurrent use.
type metrics struct {
	mu sync.RWMutex

	// Outcome counters per tier
	memoryHits     int64
	diskHits       int64
	joins          int64
	networkFetches int64
	failures       int64

	// Byte counters
	bytesFetched   int64 // Total bytes downloaded from the network
	bytesPersisted int64 // Total encoded bytes written to the disk tier

	startTime time.Time
}

// newMetrics creates a metrics collector with the clock started.
func newMetrics() *metrics {
	return &metrics{startTime: time.Now()}
}

// recordMemoryHit records a fetch satisfied by a resolved in-memory entry.
func (m *metrics) recordMemoryHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memoryHits++
}

// recordDiskHit records a fetch satisfied by a decodable blob on disk.
func (m *metrics) recordDiskHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.diskHits++
}

// recordJoin records a fetch that attached to an already in-flight operation.
func (m *metrics) recordJoin() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joins++
}

// recordNetworkFetch records a completed network download.
func (m *metrics) recordNetworkFetch(bytesFetched int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.networkFetches++
	m.bytesFetched += bytesFetched
}

// recordPersisted records encoded bytes written to the disk tier.
func (m *metrics) recordPersisted(bytesPersisted int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bytesPersisted += bytesPersisted
}

// recordFailure records a fetch operation that resolved with an error.
func (m *metrics) recordFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

// snapshot returns a point-in-time copy of the counters.
func (m *metrics) snapshot() CacheStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	requests := m.memoryHits + m.diskHits + m.joins + m.networkFetches
	var hitRate float64
	if requests > 0 {
		hitRate = float64(m.memoryHits+m.diskHits+m.joins) / float64(requests)
	}

	return CacheStats{
		MemoryHits:     m.memoryHits,
		DiskHits:       m.diskHits,
		Joins:          m.joins,
		NetworkFetches: m.networkFetches,
		Failures:       m.failures,
		Requests:       requests,
		HitRate:        hitRate,
		BytesFetched:   m.bytesFetched,
		BytesPersisted: m.bytesPersisted,
		Uptime:         time.Since(m.startTime),
	}
}

// CacheStats provides a point-in-time view of cache activity.
type CacheStats struct {
	// MemoryHits counts fetches satisfied by a resolved in-memory entry,
	// including sticky failed entries returning their recorded error.
	MemoryHits int64 `json:"memory_hits"`

	// DiskHits counts fetches satisfied by decoding a persisted blob.
	DiskHits int64 `json:"disk_hits"`

	// Joins counts fetches that awaited an operation started by another
	// caller instead of dispatching their own.
	Joins int64 `json:"joins"`

	// NetworkFetches counts dispatched network downloads, successful or
	// not. At most one per locator per fetch cycle.
	NetworkFetches int64 `json:"network_fetches"`

	// Failures counts fetch operations that resolved with an error.
	Failures int64 `json:"failures"`

	// Requests is the total number of resolved fetch outcomes
	// (memory hits + disk hits + joins + network fetches).
	Requests int64 `json:"requests"`

	// HitRate is the fraction of requests served without dispatching a new
	// network operation. Zero before the first request.
	HitRate float64 `json:"hit_rate"`

	// BytesFetched is the total raw bytes downloaded from the network.
	BytesFetched int64 `json:"bytes_fetched"`

	// BytesPersisted is the total encoded bytes written to the disk tier.
	BytesPersisted int64 `json:"bytes_persisted"`

	// Uptime is the time elapsed since the cache was created.
	Uptime time.Duration `json:"uptime"`
}
