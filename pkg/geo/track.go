package geo

import "sync"

type timedPoint struct {
	p Point
	t float64
}

// TrackBuffer maintains a rolling window of timed positions and derives the
// ground track and turn rate over that window.
type TrackBuffer struct {
	mu         sync.RWMutex
	samples    []timedPoint
	windowSize int
}

// NewTrackBuffer creates a new buffer with the specified sample window size.
func NewTrackBuffer(windowSize int) *TrackBuffer {
	if windowSize < 2 {
		windowSize = 2
	}
	return &TrackBuffer{
		windowSize: windowSize,
	}
}

// Push adds a new point at time t (seconds) and returns the bearing from the
// oldest to the newest sample. With fewer than 2 distinct samples the provided
// default heading is returned.
func (b *TrackBuffer) Push(p Point, t, defaultHeading float64) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.samples = append(b.samples, timedPoint{p: p, t: t})
	if len(b.samples) > b.windowSize {
		b.samples = b.samples[1:]
	}

	return b.trackLocked(defaultHeading)
}

// Track returns the current window bearing without adding a sample.
func (b *TrackBuffer) Track(defaultHeading float64) float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.trackLocked(defaultHeading)
}

func (b *TrackBuffer) trackLocked(defaultHeading float64) float64 {
	if len(b.samples) < 2 {
		return defaultHeading
	}
	first, last := b.samples[0].p, b.samples[len(b.samples)-1].p
	if first == last {
		return defaultHeading
	}
	return Bearing(first, last)
}

// TurnRate returns the mean rate of track change across the window in deg/s,
// positive to the right. Needs at least 3 samples.
func (b *TrackBuffer) TurnRate() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := len(b.samples)
	if n < 3 {
		return 0
	}
	var total float64
	prev := Bearing(b.samples[0].p, b.samples[1].p)
	for i := 2; i < n; i++ {
		cur := Bearing(b.samples[i-1].p, b.samples[i].p)
		total += NormalizeAngle(cur - prev)
		prev = cur
	}
	dt := b.samples[n-1].t - b.samples[1].t
	if dt <= 0 {
		return 0
	}
	return total / dt
}

// Len returns the number of buffered samples.
func (b *TrackBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.samples)
}

// Reset clears the buffer history.
func (b *TrackBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = nil
}
