package tracker

import (
	"sync"
	"sync/atomic"
)

// Tracker counts what happens to data flowing through each component
// (fixes, contest points, thermal samples, terrain lookups).
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]*ComponentStats
}

// ComponentStats holds the counters of one component.
// Fields are accessed atomically.
type ComponentStats struct {
	Accepted int64 `json:"accepted"`
	Rejected int64 `json:"rejected"`
	Errors   int64 `json:"errors"`
	Events   int64 `json:"events"`
}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{
		stats: make(map[string]*ComponentStats),
	}
}

// getStats returns the stats object for a component, creating it if needed.
func (t *Tracker) getStats(component string) *ComponentStats {
	t.mu.RLock()
	s, ok := t.stats[component]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Double check
	if s, ok = t.stats[component]; ok {
		return s
	}
	s = &ComponentStats{}
	t.stats[component] = s
	return s
}

// TrackAccepted increments the accepted counter.
func (t *Tracker) TrackAccepted(component string) {
	if t == nil {
		return
	}
	atomic.AddInt64(&t.getStats(component).Accepted, 1)
}

func (t *Tracker) TrackRejected(component string) {
	if t == nil {
		return
	}
	atomic.AddInt64(&t.getStats(component).Rejected, 1)
}

func (t *Tracker) TrackError(component string) {
	if t == nil {
		return
	}
	atomic.AddInt64(&t.getStats(component).Errors, 1)
}

// TrackEvent counts state changes (takeoff, climb start, new source).
func (t *Tracker) TrackEvent(component string) {
	if t == nil {
		return
	}
	atomic.AddInt64(&t.getStats(component).Events, 1)
}

// Snapshot returns a copy of the current stats.
func (t *Tracker) Snapshot() map[string]ComponentStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]ComponentStats, len(t.stats))
	for k, v := range t.stats {
		result[k] = ComponentStats{
			Accepted: atomic.LoadInt64(&v.Accepted),
			Rejected: atomic.LoadInt64(&v.Rejected),
			Errors:   atomic.LoadInt64(&v.Errors),
			Events:   atomic.LoadInt64(&v.Events),
		}
	}
	return result
}

// Reset zeroes every counter.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats = make(map[string]*ComponentStats)
}
