package olc

import (
	"glidecore/pkg/geo"
)

// trackPoint is one buffered sample. Points are never modified once stored.
type trackPoint struct {
	Loc     geo.Point
	AltLow  float64
	AltHigh float64
	Time    float64 // seconds
	Bearing float64 // course from the previous point, degrees
	seq     uint64  // append sequence, strictly increasing with Time
}

// buffer stores points in fixed slots. order maps the time-ordered logical
// index to a slot so the distance matrix and memo tables, which are keyed by
// slot, survive removals without being rebuilt.
type buffer struct {
	pts   [MaxPoints]trackPoint
	order []int
	pos   [MaxPoints]int
	free  []int
	seq   uint64
}

func newBuffer() *buffer {
	b := &buffer{
		order: make([]int, 0, MaxPoints),
		free:  make([]int, 0, MaxPoints),
	}
	b.reset()
	return b
}

func (b *buffer) reset() {
	b.order = b.order[:0]
	b.free = b.free[:0]
	for s := MaxPoints - 1; s >= 0; s-- {
		b.free = append(b.free, s)
		b.pos[s] = -1
	}
	b.seq = 0
}

func (b *buffer) len() int { return len(b.order) }

func (b *buffer) full() bool { return len(b.order) >= MaxPoints }

// at returns the point at logical index i.
func (b *buffer) at(i int) *trackPoint { return &b.pts[b.order[i]] }

func (b *buffer) slot(i int) int { return b.order[i] }

func (b *buffer) last() *trackPoint {
	if len(b.order) == 0 {
		return nil
	}
	return b.at(len(b.order) - 1)
}

// live reports whether slot s holds a buffered point.
func (b *buffer) live(s int) bool { return s >= 0 && s < MaxPoints && b.pos[s] >= 0 }

// index returns the logical index of slot s, or -1.
func (b *buffer) index(s int) int {
	if s < 0 || s >= MaxPoints {
		return -1
	}
	return b.pos[s]
}

// push stores p after the current last point and returns its slot. The
// caller guarantees the buffer is not full.
func (b *buffer) push(p trackPoint) int {
	s := b.free[len(b.free)-1]
	b.free = b.free[:len(b.free)-1]

	b.seq++
	p.seq = b.seq
	b.pts[s] = p
	b.pos[s] = len(b.order)
	b.order = append(b.order, s)
	return s
}

// remove drops logical index i and returns the freed slot.
func (b *buffer) remove(i int) int {
	s := b.order[i]
	copy(b.order[i:], b.order[i+1:])
	b.order = b.order[:len(b.order)-1]
	for j := i; j < len(b.order); j++ {
		b.pos[b.order[j]] = j
	}
	b.pos[s] = -1
	b.free = append(b.free, s)
	return s
}

// firstNewer returns the lowest logical index whose seq is above seq, or
// len() when there is none.
func (b *buffer) firstNewer(seq uint64) int {
	i := len(b.order)
	for i > 0 && b.at(i-1).seq > seq {
		i--
	}
	return i
}
