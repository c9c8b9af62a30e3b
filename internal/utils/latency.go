package utils

import (
	"sort"
	"sync"
	"time"
)

// LatencyTracker keeps a sliding window of explanation durations so the
// service can log percentiles without a metrics backend. The zero value is
// not usable; construct with NewLatencyTracker.
type LatencyTracker struct {
	mu   sync.RWMutex
	ring []time.Duration
	next int
	n    int
}

// NewLatencyTracker creates a tracker over a window of the given size.
func NewLatencyTracker(window int) *LatencyTracker {
	if window <= 0 {
		window = 256
	}
	return &LatencyTracker{ring: make([]time.Duration, window)}
}

// Observe records a duration, evicting the oldest sample once the window
// is full.
func (l *LatencyTracker) Observe(d time.Duration) {
	l.mu.Lock()
	l.ring[l.next] = d
	l.next = (l.next + 1) % len(l.ring)
	if l.n < len(l.ring) {
		l.n++
	}
	l.mu.Unlock()
}

// Count returns the number of samples currently in the window.
func (l *LatencyTracker) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.n
}

// Percentile returns the p-th percentile (0-100) over the window, or zero
// when no samples have been observed.
func (l *LatencyTracker) Percentile(p float64) time.Duration {
	l.mu.RLock()
	sorted := append([]time.Duration(nil), l.ring[:l.n]...)
	l.mu.RUnlock()

	if len(sorted) == 0 {
		return 0
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return sorted[int(p/100*float64(len(sorted)-1))]
}
