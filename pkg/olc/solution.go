package olc

import (
	"math"
	"slices"

	"glidecore/pkg/geo"
)

// Solution is the best shape found so far for one rule.
type Solution struct {
	Rules    Rules       `json:"rules" msgpack:"rules"`
	Points   []geo.Point `json:"points" msgpack:"points"`
	Valid    bool        `json:"valid" msgpack:"valid"`
	Distance float64     `json:"distance_m" msgpack:"distance"`
	Time     float64     `json:"time_s" msgpack:"time"`
	Score    float64     `json:"score" msgpack:"score"`
	Finished bool        `json:"finished" msgpack:"finished"`
	// Projected is where a provisional result expects the glider to end up.
	// Zero when the solution is finished.
	Projected geo.Point `json:"projected" msgpack:"projected"`
}

// Clone returns a copy that does not share the point slice.
func (s Solution) Clone() Solution {
	s.Points = slices.Clone(s.Points)
	return s
}

// Legs returns the great-circle length of each leg between consecutive points.
func (s Solution) Legs() []float64 {
	if len(s.Points) < 2 {
		return nil
	}
	legs := make([]float64, 0, len(s.Points)-1)
	for i := 1; i < len(s.Points); i++ {
		legs = append(legs, geo.Distance(s.Points[i-1], s.Points[i]))
	}
	return legs
}

// improves decides whether cand replaces old. Ties never replace, except a
// finished result taking over an equal provisional one.
func improves(old, cand Solution) bool {
	if !cand.Valid || cand.Score <= 0 {
		return false
	}
	if !old.Valid {
		return true
	}
	if cand.Score > old.Score {
		return true
	}
	return cand.Score == old.Score && cand.Finished && !old.Finished
}

// clampScore keeps scores finite and within [0, MaxScore].
func clampScore(v float64) float64 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case math.IsInf(v, 1), v > MaxScore:
		return MaxScore
	}
	return v
}

// score converts matrix units into points for rules r.
func score(r Rules, units int, s *Settings) float64 {
	km := float64(units) * DistanceUnit / 1000
	v := km * 100 / s.Handicap
	switch r {
	case Triangle:
		v *= s.TriangleBonus
	case Sprint:
		v /= s.SprintWindow.Hours()
	}
	return clampScore(v)
}
