// Package olc finds the best online-contest shapes (sprint, FAI triangle,
// classic) in a bounded, thinned buffer of flight-track points.
package olc

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"glidecore/pkg/geo"
	"glidecore/pkg/logging"
)

// Stats are cumulative counters since the optimizer was built.
type Stats struct {
	Accepted     int64         `json:"accepted"`
	Rejected     int64         `json:"rejected"`
	Queued       int64         `json:"queued"`
	Dropped      int64         `json:"dropped"`
	Thinned      int64         `json:"thinned"`
	Scans        int64         `json:"scans"`
	Skipped      int64         `json:"skipped"`
	Improvements int64         `json:"improvements"`
	LastScan     time.Duration `json:"last_scan_ns"`
}

type pendingPoint struct {
	loc             geo.Point
	altLow, altHigh float64
	t, bearing      float64
}

// Optimizer owns the point buffer, distance matrix and memo tables of one
// flight and the best solution found so far for each rule.
//
// AddPoint and the accessors may be called from any goroutine. Optimize is
// meant for a single calculation goroutine; a concurrent call returns false.
type Optimizer struct {
	mu       sync.Mutex
	settings Settings
	glide    Glide
	rules    Rules

	buf  *buffer
	dist *distanceMatrix
	tbl  *memo

	busy           atomic.Bool
	pending        []pendingPoint
	resetRequested bool

	// start detection over the raw altitude stream
	alt1, alt2 float64
	raw        int
	altMin     float64
	tStart     float64

	scanned   [numRules]uint64
	solutions [numRules]Solution
	stats     Stats
}

// NewOptimizer builds an empty optimizer. glide may be nil, which disables
// provisional final-glide candidates.
func NewOptimizer(s Settings, glide Glide) *Optimizer {
	s.normalize()
	o := &Optimizer{
		settings: s,
		glide:    glide,
		rules:    Sprint,
		buf:      newBuffer(),
		dist:     newDistanceMatrix(),
		tbl:      newMemo(),
	}
	o.resetLocked()
	return o
}

// SetRules selects the rule used for start detection margins. Optimize also
// records the rule it was last called with.
func (o *Optimizer) SetRules(r Rules) {
	if !r.Valid() {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rules = r
}

// SetHandicap changes the handicap used for future scores.
func (o *Optimizer) SetHandicap(h float64) {
	if h <= 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.settings.Handicap = h
}

// Settings returns the active settings.
func (o *Optimizer) Settings() Settings {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.settings
}

// AddPoint offers a fix to the buffer. It returns true when the point was
// stored. Points closer than the minimum time step or distance to the last
// stored point, or not later than it, are dropped. While a scan is running
// the point is held back, applied once the scan finishes, and false is
// returned. bearing is the fix track; it is only kept for the first point,
// later points carry the course from their predecessor.
func (o *Optimizer) AddPoint(loc geo.Point, altLow, altHigh, t, bearing float64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	p := pendingPoint{loc: loc, altLow: altLow, altHigh: altHigh, t: t, bearing: bearing}
	if o.busy.Load() {
		if len(o.pending) >= o.settings.PendingLimit {
			o.stats.Dropped++
			return false
		}
		o.pending = append(o.pending, p)
		o.stats.Queued++
		return false
	}
	return o.addLocked(p)
}

func (o *Optimizer) addLocked(p pendingPoint) bool {
	last := o.buf.last()
	if last != nil && p.t <= last.Time {
		o.stats.Rejected++
		return false
	}

	isMin := o.detectStart(p)

	if last != nil {
		if p.t-last.Time < o.settings.MinTimeStep.Seconds() {
			o.stats.Rejected++
			return false
		}
		if !isMin && geo.Distance(last.Loc, p.loc) < o.settings.MinDistance {
			o.stats.Rejected++
			return false
		}
	}

	bearing := p.bearing
	if last != nil {
		bearing = geo.Bearing(last.Loc, p.loc)
	}
	o.appendLocked(trackPoint{
		Loc:     p.loc,
		AltLow:  p.altLow,
		AltHigh: p.altHigh,
		Time:    p.t,
		Bearing: bearing,
	})
	o.stats.Accepted++
	return true
}

// detectStart watches for local altitude minima. A new minimum lower than
// every earlier one (by the rule's margin) moves the flight start to now.
func (o *Optimizer) detectStart(p pendingPoint) bool {
	alt := p.altLow
	isMin := o.raw >= 2 && alt > o.alt1 && o.alt2 > o.alt1
	margin := 0.0
	if o.rules != Sprint {
		margin = o.settings.HeightAllowance
	}
	isMin = isMin && alt < o.altMin-margin
	if isMin {
		o.altMin = min(alt, o.altMin)
		o.tStart = p.t
		logging.TraceDefault("olc start detected", "time", p.t, "alt", alt)
	}
	o.alt2, o.alt1 = o.alt1, alt
	o.raw++
	return isMin
}

func (o *Optimizer) appendLocked(p trackPoint) {
	if o.buf.full() {
		o.thinLocked()
	}
	s := o.buf.push(p)
	o.tbl.clearSlot(s)
	o.dist.addRow(o.buf, s)
}

// thinLocked evicts the interior point whose removal shortens the path
// through its neighbours the least. The first, last and start points stay.
func (o *Optimizer) thinLocked() {
	n := o.buf.len()
	if n < 3 {
		return
	}
	start := o.startIndexLocked()
	d := func(i, j int) int { return o.dist.get(o.buf.slot(i), o.buf.slot(j)) }

	victim, loss := -1, 0
	for i := 1; i < n-1; i++ {
		if i == start {
			continue
		}
		l := d(i-1, i) + d(i, i+1) - d(i-1, i+1)
		if victim < 0 || l < loss {
			victim, loss = i, l
		}
	}
	if victim < 0 {
		return
	}
	o.buf.remove(victim)
	o.stats.Thinned++
}

func (o *Optimizer) startIndexLocked() int {
	for i := 0; i < o.buf.len(); i++ {
		if o.buf.at(i).Time >= o.tStart {
			return i
		}
	}
	return 0
}

// Optimize runs the scanner for rules over the points added since its last
// pass and reports whether the stored solution improved. It returns false at
// once when another pass is running or nothing new has arrived.
func (o *Optimizer) Optimize(rules Rules, flying bool) bool {
	if !rules.Valid() {
		return false
	}

	o.mu.Lock()
	o.rules = rules
	if !o.busy.CompareAndSwap(false, true) {
		o.stats.Skipped++
		o.mu.Unlock()
		return false
	}
	if o.buf.len() < rules.MinPoints() || o.buf.seq <= o.scanned[rules] {
		o.busy.Store(false)
		o.mu.Unlock()
		return false
	}
	settings := o.settings
	sc := &scanner{
		b:        o.buf,
		m:        o.dist,
		t:        o.tbl,
		settings: &settings,
		glide:    o.glide,
		window:   settings.SprintWindow.Seconds(),
		flying:   flying,
		from:     o.scanned[rules],
		start:    o.startIndexLocked(),
	}
	upto := o.buf.seq
	n := o.buf.len()
	o.mu.Unlock()

	began := time.Now()
	sol, found := sc.run(rules)
	took := time.Since(began)

	o.mu.Lock()
	defer o.mu.Unlock()

	improved := false
	o.stats.Scans++
	o.stats.LastScan = took
	queued := o.pending
	o.pending = nil
	if o.resetRequested {
		o.resetLocked()
	} else {
		o.scanned[rules] = upto
		if found && improves(o.solutions[rules], sol) {
			o.solutions[rules] = sol
			o.stats.Improvements++
			improved = true
			slog.Debug("olc solution improved",
				"rules", rules, "score", sol.Score, "distance_km", sol.Distance/1000,
				"finished", sol.Finished, "points", n, "took", took)
		}
	}
	o.busy.Store(false)

	for _, p := range queued {
		o.addLocked(p)
	}
	return improved
}

// ResetFlight clears the buffer, the tables and every solution. If a pass is
// running the reset is applied when it finishes.
func (o *Optimizer) ResetFlight() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy.Load() {
		o.resetRequested = true
		o.pending = nil
		return
	}
	o.resetLocked()
}

func (o *Optimizer) resetLocked() {
	o.buf.reset()
	o.tbl.reset()
	o.pending = nil
	o.resetRequested = false
	o.alt1, o.alt2, o.raw = 0, 0, 0
	o.altMin = 100000
	o.tStart = 0
	for r := range o.solutions {
		o.solutions[r] = Solution{Rules: Rules(r)}
		o.scanned[r] = 0
	}
}

// N returns the number of buffered points.
func (o *Optimizer) N() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.len()
}

// Busy reports whether a pass is running.
func (o *Optimizer) Busy() bool { return o.busy.Load() }

// Points returns the buffered locations in time order.
func (o *Optimizer) Points() []geo.Point {
	o.mu.Lock()
	defer o.mu.Unlock()
	pts := make([]geo.Point, o.buf.len())
	for i := range pts {
		pts[i] = o.buf.at(i).Loc
	}
	return pts
}

// StartTime is the time of the detected flight start, 0 when none.
func (o *Optimizer) StartTime() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.tStart
}

// Solution returns a copy of the best solution for rules. Use it when more
// than one field is needed so they come from the same result.
func (o *Optimizer) Solution(rules Rules) Solution {
	if !rules.Valid() {
		return Solution{Rules: rules}
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.solutions[rules].Clone()
}

// Score is the best score for rules, 0 when there is none.
func (o *Optimizer) Score(rules Rules) float64 { return o.Solution(rules).Score }

// Distance is the scored distance in meters.
func (o *Optimizer) Distance(rules Rules) float64 { return o.Solution(rules).Distance }

// Time is the elapsed time of the solution in seconds.
func (o *Optimizer) Time(rules Rules) float64 { return o.Solution(rules).Time }

// Valid reports whether a solution exists for rules.
func (o *Optimizer) Valid(rules Rules) bool { return o.Solution(rules).Valid }

// Finished reports whether the solution for rules is final rather than
// provisional.
func (o *Optimizer) Finished(rules Rules) bool { return o.Solution(rules).Finished }

// Stats returns a copy of the counters.
func (o *Optimizer) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stats
}
