package sim

const (
	// TakeoffSpeed (m/s) held for TakeoffTime (s) means the aircraft flies.
	TakeoffSpeed = 10.0
	TakeoffTime  = 10.0
	// LandingSpeed (m/s) held for LandingTime (s) means it has landed.
	LandingSpeed = 2.0
	LandingTime  = 30.0
)

// FlightDetector tracks the flying state from ground speed.
type FlightDetector struct {
	flying   bool
	since    float64
	counting bool
}

// Update feeds a fix and returns the flying state and whether it changed
// with this fix.
func (d *FlightDetector) Update(t, groundSpeed float64, onGround bool) (flying, changed bool) {
	var cond bool
	var hold float64
	if d.flying {
		cond = onGround || groundSpeed < LandingSpeed
		hold = LandingTime
	} else {
		cond = !onGround && groundSpeed > TakeoffSpeed
		hold = TakeoffTime
	}

	if !cond {
		d.counting = false
		return d.flying, false
	}
	if !d.counting {
		d.counting = true
		d.since = t
	}
	if t-d.since >= hold {
		d.flying = !d.flying
		d.counting = false
		return d.flying, true
	}
	return d.flying, false
}

// Flying reports the current state.
func (d *FlightDetector) Flying() bool { return d.flying }

// Force sets the state directly, e.g. when resuming a flight in the air.
func (d *FlightDetector) Force(flying bool) {
	d.flying = flying
	d.counting = false
}
