package olc

import (
	"math"

	"glidecore/pkg/geo"
)

// matrixSize is the number of unordered slot pairs.
const matrixSize = MaxPoints * (MaxPoints - 1) / 2

// triIndex maps an unordered pair of distinct slots onto the packed upper
// triangle.
func triIndex(a, b int) int {
	if a > b {
		a, b = b, a
	}
	return a*(2*MaxPoints-a-1)/2 + b - a - 1
}

// quantize converts meters to matrix units, saturating at maxUnits.
func quantize(meters float64) uint16 {
	if math.IsNaN(meters) || meters <= 0 {
		return 0
	}
	u := math.Floor(math.Round(meters) / DistanceUnit)
	if u >= maxUnits {
		return maxUnits
	}
	return uint16(u)
}

// distanceMatrix holds pairwise distances between buffer slots in
// DistanceUnit steps.
type distanceMatrix struct {
	d []uint16
}

func newDistanceMatrix() *distanceMatrix {
	return &distanceMatrix{d: make([]uint16, matrixSize)}
}

func (m *distanceMatrix) get(a, b int) int {
	if a == b {
		return 0
	}
	return int(m.d[triIndex(a, b)])
}

// addRow computes the distances from the point in slot s to every other live
// point. It is the only place distances are evaluated.
func (m *distanceMatrix) addRow(b *buffer, s int) {
	p := b.pts[s].Loc
	for _, o := range b.order {
		if o == s {
			continue
		}
		m.d[triIndex(s, o)] = quantize(geo.Distance(p, b.pts[o].Loc))
	}
}
