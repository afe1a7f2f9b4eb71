package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds application metrics
type Metrics struct {
	RequestCount  int64
	ErrorCount    int64
	CacheHits     int64
	CacheMisses   int64
	FoldersLoaded int64
	FilesParsed   int64
	ParseFailures int64
	StartTime     time.Time

	ResponseTimes      []time.Duration
	ResponseTimesMutex sync.RWMutex

	RequestCountByStatus map[int]int64
	StatusMutex          sync.RWMutex
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:            time.Now(),
		ResponseTimes:        make([]time.Duration, 0, 1000),
		RequestCountByStatus: make(map[int]int64),
	}
}

// IncrementRequest increments the request count
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementCacheHit increments cache hit count
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// IncrementCacheMiss increments cache miss count
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
}

// IncrementFoldersLoaded increments the loaded-folder count
func (m *Metrics) IncrementFoldersLoaded() {
	atomic.AddInt64(&m.FoldersLoaded, 1)
}

// RecordParseResults tracks how many files parsed cleanly in one load
func (m *Metrics) RecordParseResults(parsed, failed int) {
	atomic.AddInt64(&m.FilesParsed, int64(parsed))
	atomic.AddInt64(&m.ParseFailures, int64(failed))
}

// RecordResponseTime records a response time, keeping the most recent
// window bounded.
func (m *Metrics) RecordResponseTime(d time.Duration) {
	m.ResponseTimesMutex.Lock()
	defer m.ResponseTimesMutex.Unlock()

	m.ResponseTimes = append(m.ResponseTimes, d)
	if len(m.ResponseTimes) > 1000 {
		m.ResponseTimes = m.ResponseTimes[len(m.ResponseTimes)-1000:]
	}
}

// RecordRequestByStatus tracks request counts per HTTP status code
func (m *Metrics) RecordRequestByStatus(status int) {
	m.StatusMutex.Lock()
	defer m.StatusMutex.Unlock()

	m.RequestCountByStatus[status]++
}

// percentile returns the p-th percentile of the recorded response times.
// Callers must hold ResponseTimesMutex.
func (m *Metrics) percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

// GetStats returns a snapshot of the current metrics
func (m *Metrics) GetStats() map[string]interface{} {
	m.ResponseTimesMutex.RLock()
	sorted := make([]time.Duration, len(m.ResponseTimes))
	copy(sorted, m.ResponseTimes)
	m.ResponseTimesMutex.RUnlock()

	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	m.StatusMutex.RLock()
	byStatus := make(map[int]int64, len(m.RequestCountByStatus))
	for k, v := range m.RequestCountByStatus {
		byStatus[k] = v
	}
	m.StatusMutex.RUnlock()

	return map[string]interface{}{
		"request_count":      atomic.LoadInt64(&m.RequestCount),
		"error_count":        atomic.LoadInt64(&m.ErrorCount),
		"cache_hits":         atomic.LoadInt64(&m.CacheHits),
		"cache_misses":       atomic.LoadInt64(&m.CacheMisses),
		"folders_loaded":     atomic.LoadInt64(&m.FoldersLoaded),
		"files_parsed":       atomic.LoadInt64(&m.FilesParsed),
		"parse_failures":     atomic.LoadInt64(&m.ParseFailures),
		"requests_by_status": byStatus,
		"response_time_p50":  m.percentile(sorted, 0.50).Milliseconds(),
		"response_time_p95":  m.percentile(sorted, 0.95).Milliseconds(),
		"response_time_p99":  m.percentile(sorted, 0.99).Milliseconds(),
		"uptime_seconds":     time.Since(m.StartTime).Seconds(),
	}
}
