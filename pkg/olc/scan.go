package olc

import (
	"glidecore/pkg/geo"
)

// Glide is the part of the glide polar the scanners use to project
// provisional results.
type Glide interface {
	BestLD() float64
	VBestLD() float64
	MinSink() float64
	SpeedForSinkRate(w float64) float64
}

// scanner bundles the read-only view a single Optimize pass works on. The
// memo tables are the only state it writes.
type scanner struct {
	b        *buffer
	m        *distanceMatrix
	t        *memo
	settings *Settings
	glide    Glide
	window   float64 // sprint window, seconds
	flying   bool
	from     uint64 // points with seq above this are new
	start    int    // logical index of the detected start
}

func (sc *scanner) d(i, j int) int {
	return sc.m.get(sc.b.slot(i), sc.b.slot(j))
}

func (sc *scanner) predict() bool {
	return sc.flying && sc.settings.Predict && sc.glide != nil && sc.glide.BestLD() > 0
}

// glideUnits is how far the glide polar carries the glider on dh meters.
func (sc *scanner) glideUnits(dh float64) int {
	if dh <= 0 {
		return 0
	}
	return int(sc.glide.BestLD() * dh / DistanceUnit)
}

func (sc *scanner) run(r Rules) (Solution, bool) {
	switch r {
	case Triangle:
		return sc.triangle()
	case Sprint:
		return sc.sprint()
	case Classic:
		return sc.classic()
	}
	return Solution{}, false
}

// solution materializes a candidate from logical vertex indices.
func (sc *scanner) solution(r Rules, idx []int, units int, elapsed float64, finished bool) Solution {
	pts := make([]geo.Point, len(idx))
	for i, k := range idx {
		pts[i] = sc.b.at(k).Loc
	}
	return Solution{
		Rules:    r,
		Points:   pts,
		Valid:    units > 0,
		Distance: float64(units) * DistanceUnit,
		Time:     elapsed,
		Score:    score(r, units, sc.settings),
		Finished: finished,
	}
}

// project returns the point dfurther units beyond logical index i along the
// track recorded there.
func (sc *scanner) project(i, units int) geo.Point {
	p := sc.b.at(i)
	return geo.DestinationPoint(p.Loc, float64(units)*DistanceUnit, p.Bearing)
}
