package olc

import "math"

const noSlot = math.MaxUint16

// classicEnd memoizes, for one second-last point, the furthest later point
// that is a legal classic finish for the current start.
type classicEnd struct {
	end     uint16 // slot, noSlot when none
	dist    uint16
	upto    uint64 // every point with seq <= upto has been considered
	changed uint64 // buffer seq when end last changed
}

// memo holds the incremental search tables. Entries are keyed by slot and
// validated against the buffer on use, so removals need no bookkeeping.
// Entries keyed by or pointing at a slot are cleared when that slot is
// handed out again.
type memo struct {
	split        []uint16
	sprintStart  [MaxPoints]uint16
	classic      [MaxPoints]classicEnd
	classicStart int
}

func newMemo() *memo {
	t := &memo{split: make([]uint16, matrixSize)}
	t.reset()
	return t
}

func (t *memo) reset() {
	for i := range t.split {
		t.split[i] = noSlot
	}
	for s := 0; s < MaxPoints; s++ {
		t.sprintStart[s] = noSlot
	}
	t.resetClassic(-1)
}

func (t *memo) resetClassic(start int) {
	for s := range t.classic {
		t.classic[s] = classicEnd{end: noSlot}
	}
	t.classicStart = start
}

// clearSlot forgets everything keyed by slot s.
func (t *memo) clearSlot(s int) {
	for o := 0; o < MaxPoints; o++ {
		if o != s {
			t.split[triIndex(s, o)] = noSlot
		}
	}
	t.sprintStart[s] = noSlot
	for k := range t.classic {
		if k == s || int(t.classic[k].end) == s {
			t.classic[k] = classicEnd{end: noSlot}
		}
	}
}

// split returns the point k between i and j maximizing d(i,k)+d(k,j), or j
// when i and j are adjacent.
func (sc *scanner) split(i, j int) int {
	if j-i < 2 {
		return j
	}
	idx := triIndex(sc.b.slot(i), sc.b.slot(j))
	if k := sc.t.split[idx]; k != noSlot {
		if kp := sc.b.index(int(k)); kp > i && kp < j {
			return kp
		}
	}

	best, bestK := -1, j
	for k := i + 1; k < j; k++ {
		if d := sc.d(i, k) + sc.d(k, j); d > best {
			best, bestK = d, k
		}
	}
	sc.t.split[idx] = uint16(sc.b.slot(bestK))
	return bestK
}

// sprintStart returns the latest, lowest point within the sprint window
// before end. It returns end itself when no earlier point is as low.
func (sc *scanner) sprintStart(end int) int {
	es := sc.b.slot(end)
	if s := sc.t.sprintStart[es]; s != noSlot {
		if sp := sc.b.index(int(s)); sp >= 0 && sp <= end {
			return sp
		}
	}

	pe := sc.b.at(end)
	best, altMin := end, pe.AltLow
	for j := 0; j < end; j++ {
		p := sc.b.at(j)
		if pe.Time-p.Time >= sc.window {
			continue
		}
		if p.AltLow <= altMin {
			best, altMin = j, p.AltLow
		}
	}
	sc.t.sprintStart[es] = uint16(sc.b.slot(best))
	return best
}

// bestEnd returns the furthest point after j that may finish a classic
// flight from start, or -1. The second result is the buffer seq at which that
// answer last changed.
func (sc *scanner) bestEnd(start, j int) (int, uint64) {
	if sc.t.classicStart != sc.b.slot(start) {
		sc.t.resetClassic(sc.b.slot(start))
	}
	e := &sc.t.classic[sc.b.slot(j)]

	if e.end != noSlot {
		if kp := sc.b.index(int(e.end)); kp <= j {
			*e = classicEnd{end: noSlot}
		}
	}

	startAlt := sc.b.at(start).AltLow
	for k := max(j+1, sc.b.firstNewer(e.upto)); k < sc.b.len(); k++ {
		pk := sc.b.at(k)
		if pk.AltHigh-startAlt < -sc.settings.HeightAllowance {
			continue
		}
		if d := sc.d(j, k); e.end == noSlot || d >= int(e.dist) {
			e.end, e.dist = uint16(sc.b.slot(k)), uint16(d)
			e.changed = sc.b.seq
		}
	}
	e.upto = sc.b.seq

	if e.end == noSlot {
		return -1, e.changed
	}
	return sc.b.index(int(e.end)), e.changed
}
