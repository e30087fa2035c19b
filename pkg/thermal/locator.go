// Package thermal estimates where the core of the current thermal is from
// recent lift samples, corrected for wind drift.
package thermal

import (
	"math"
	"sync"

	"glidecore/pkg/geo"
	"glidecore/pkg/logging"
)

const (
	// NMax is the capacity of the sample ring.
	NMax = 60
	// NMin is the number of valid samples needed for an estimate.
	NMin = 5

	// WeightScale and PositionScale set the fixed-point resolution of the
	// weighted centroid sums.
	WeightScale   = 1 << 12
	PositionScale = 10

	// decays used for the two centroids that must agree.
	decayShort = 1.0
	decayLong  = 2.0
)

// Settings tune the acceptance of an estimate.
type Settings struct {
	// AgreementRadius is how far apart (m) the two decay estimates may be.
	AgreementRadius float64
	// MinWeight is the least total lift weight accepted.
	MinWeight float64
}

// DefaultSettings returns the stock tuning.
func DefaultSettings() Settings {
	return Settings{AgreementRadius: 250, MinWeight: 0.25}
}

// Estimate is the locator output. R < 0 means there is no estimate.
type Estimate struct {
	Location geo.Point `json:"location"`
	W        float64   `json:"w"`
	R        float64   `json:"r"`
	Time     float64   `json:"time"`
}

// Available reports whether the estimate may be used.
func (e Estimate) Available() bool { return e.R >= 0 }

var none = Estimate{W: 0, R: -1}

type sample struct {
	loc   geo.Point
	t     float64
	lift  float64
	valid bool

	// drift-corrected offsets from the latest update, in PositionScale units
	x, y int64
}

// Locator keeps a ring of the last NMax lift samples. All methods are safe
// for concurrent use.
type Locator struct {
	mu       sync.Mutex
	settings Settings
	ring     [NMax]sample
	next     int
	count    int
	est      Estimate
}

// NewLocator builds an empty locator.
func NewLocator(s Settings) *Locator {
	if s.AgreementRadius <= 0 {
		s.AgreementRadius = DefaultSettings().AgreementRadius
	}
	if s.MinWeight <= 0 {
		s.MinWeight = DefaultSettings().MinWeight
	}
	return &Locator{settings: s, est: none}
}

// Reset invalidates every sample and the running estimate.
func (l *Locator) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ring = [NMax]sample{}
	l.next, l.count = 0, 0
	l.est = none
}

// AddPoint records a lift sample. The first sample after a reset seeds the
// running estimate at its own location.
func (l *Locator) AddPoint(t float64, loc geo.Point, lift float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count == 0 {
		l.est = Estimate{Location: loc, W: 0, R: -1, Time: t}
	}
	l.ring[l.next] = sample{loc: loc, t: t, lift: lift, valid: true}
	l.next = (l.next + 1) % NMax
	if l.count < NMax {
		l.count++
	}
}

// Len is the number of valid samples.
func (l *Locator) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Update recomputes the estimate at time t around the aircraft at loc.
// Samples are moved downwind by the drift since they were taken. windBearing
// is the direction the wind comes from.
func (l *Locator) Update(t float64, loc geo.Point, windSpeed, windBearing, trackBearing float64) Estimate {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count < NMin {
		return none
	}

	frame := geo.NewFrame(loc)
	vx, vy := geo.WindVector(windSpeed, windBearing)
	for i := range l.ring {
		s := &l.ring[i]
		if !s.valid {
			continue
		}
		dt := max(t-s.t, 0)
		x, y := frame.ToXY(s.loc)
		s.x = int64(math.Round((x + vx*dt) * PositionScale))
		s.y = int64(math.Round((y + vy*dt) * PositionScale))
	}

	x1, y1, ok1 := l.centroid(t, decayShort)
	x2, y2, ok2 := l.centroid(t, decayLong)
	if !ok1 || !ok2 {
		return none
	}
	if math.Hypot(x1-x2, y1-y2) > l.settings.AgreementRadius {
		logging.TraceDefault("thermal estimates disagree",
			"short_x", x1, "short_y", y1, "long_x", x2, "long_y", y2, "track", trackBearing)
		return none
	}

	l.est = Estimate{
		Location: frame.FromXY(x1, y1),
		W:        1,
		R:        1,
		Time:     t,
	}
	return l.est
}

// centroid returns the lift- and age-weighted mean offset in meters. Older
// samples count for less, more so with a larger decay.
func (l *Locator) centroid(t, decay float64) (float64, float64, bool) {
	var sw, sx, sy int64
	for i := range l.ring {
		s := &l.ring[i]
		if !s.valid || s.lift <= 0 {
			continue
		}
		age := max(t-s.t, 0)
		w := s.lift * math.Exp(-1.5*decay*age/NMax)
		iw := int64(math.Round(w * WeightScale))
		if iw == 0 {
			continue
		}
		sw += iw
		sx += s.x * iw
		sy += s.y * iw
	}
	if sw == 0 || float64(sw)/WeightScale < l.settings.MinWeight {
		return 0, 0, false
	}
	return float64(sx) / float64(sw) / PositionScale, float64(sy) / float64(sw) / PositionScale, true
}

// Estimate returns the last successful estimate, or the seed position with
// R = -1 when none has been made since the reset.
func (l *Locator) Estimate() Estimate {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.est
}
