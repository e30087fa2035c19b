package olc

import "time"

// Buffer and matrix dimensions.
const (
	// MaxPoints bounds the track point buffer.
	MaxPoints = 300
	// DistanceUnit is the matrix quantum in meters.
	DistanceUnit = 100.0
	// maxUnits is the saturation value of a matrix entry.
	maxUnits = 1<<16 - 1
	// MaxScore caps any computed score.
	MaxScore = 100000.0
)

// Settings holds the tunables of the optimizer. The zero value is not
// useful; start from DefaultSettings.
type Settings struct {
	// Handicap is the glider index; scores are km·100/Handicap.
	Handicap float64
	// MinDistance is the denoise distance filter between accepted points (m).
	MinDistance float64
	// MinTimeStep is the minimum spacing between accepted points.
	MinTimeStep time.Duration
	// PendingLimit bounds the queue of points arriving during a scan.
	PendingLimit int

	// SprintWindow is the sprint's trailing time window.
	SprintWindow time.Duration

	// CloseFraction is the allowed start/finish gap relative to the closing leg.
	CloseFraction float64
	// FinishRadius marks a triangle as finished once the gap is this small (m).
	FinishRadius float64
	// MinLegFraction is the FAI shortest-leg rule for small triangles.
	MinLegFraction float64
	// LargeTriangleThreshold switches to the 25%/45% rule (m of perimeter).
	LargeTriangleThreshold float64
	// TriangleBonus multiplies the score of FAI triangles.
	TriangleBonus float64
	// HeightAllowance is how much lower than the start a finish may be (m).
	HeightAllowance float64

	// Predict enables provisional final-glide candidates while flying.
	Predict bool
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Handicap:               108,
		MinDistance:            500,
		MinTimeStep:            time.Second,
		PendingLimit:           64,
		SprintWindow:           150 * time.Minute,
		CloseFraction:          0.2,
		FinishRadius:           1000,
		MinLegFraction:         0.28,
		LargeTriangleThreshold: 500000,
		TriangleBonus:          1.4,
		HeightAllowance:        1000,
		Predict:                true,
	}
}

func (s *Settings) normalize() {
	d := DefaultSettings()
	if s.Handicap <= 0 {
		s.Handicap = d.Handicap
	}
	if s.PendingLimit <= 0 {
		s.PendingLimit = d.PendingLimit
	}
	if s.SprintWindow <= 0 {
		s.SprintWindow = d.SprintWindow
	}
	if s.CloseFraction <= 0 {
		s.CloseFraction = d.CloseFraction
	}
	if s.MinLegFraction <= 0 {
		s.MinLegFraction = d.MinLegFraction
	}
	if s.LargeTriangleThreshold <= 0 {
		s.LargeTriangleThreshold = d.LargeTriangleThreshold
	}
	if s.TriangleBonus <= 0 {
		s.TriangleBonus = 1
	}
}
