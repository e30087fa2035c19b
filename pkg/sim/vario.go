package sim

import (
	"sync"
)

// VarioBuffer keeps a rolling window of altitude samples and derives a
// smoothed climb rate.
type VarioBuffer struct {
	mu      sync.RWMutex
	samples []altSample
	window  float64
}

type altSample struct {
	t   float64
	alt float64
}

// NewVarioBuffer creates a buffer averaging over window seconds (e.g. 30).
func NewVarioBuffer(window float64) *VarioBuffer {
	return &VarioBuffer{window: window}
}

// Update adds a sample and returns the climb rate in m/s across the window.
func (b *VarioBuffer) Update(t, alt float64) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n := len(b.samples); n > 0 && t <= b.samples[n-1].t {
		return b.rateLocked()
	}
	b.samples = append(b.samples, altSample{t: t, alt: alt})

	cutoff := t - b.window
	for len(b.samples) > 2 && b.samples[1].t < cutoff {
		b.samples = b.samples[1:]
	}
	return b.rateLocked()
}

// Rate returns the last computed climb rate.
func (b *VarioBuffer) Rate() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rateLocked()
}

func (b *VarioBuffer) rateLocked() float64 {
	if len(b.samples) < 2 {
		return 0
	}
	first := b.samples[0]
	last := b.samples[len(b.samples)-1]
	dt := last.t - first.t
	if dt <= 0 {
		return 0
	}
	return (last.alt - first.alt) / dt
}

// Reset clears the buffer.
func (b *VarioBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = nil
}
