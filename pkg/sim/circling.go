package sim

import (
	"math"

	"glidecore/pkg/geo"
)

// TurnMode is the phase of the circling state machine.
type TurnMode int

const (
	ModeCruise TurnMode = iota
	ModeWaitClimb
	ModeClimb
	ModeWaitCruise
)

func (m TurnMode) String() string {
	switch m {
	case ModeCruise:
		return "cruise"
	case ModeWaitClimb:
		return "wait_climb"
	case ModeClimb:
		return "climb"
	case ModeWaitCruise:
		return "wait_cruise"
	}
	return "unknown"
}

const (
	// MinTurnRate (deg/s) separates turning from straight flight.
	MinTurnRate = 4.0
	// CruiseClimbSwitch is how long (s) turning must last to count as circling.
	CruiseClimbSwitch = 15.0
	// ClimbCruiseSwitch is how long (s) straight flight must last to end it.
	ClimbCruiseSwitch = 10.0
	// ThermalTimeMin is the shortest climb (s) that updates the thermal stats.
	ThermalTimeMin = 45.0

	maxTurnRate = 50.0
	smoothing   = 0.3
)

// Event is a change of circling state reported by Update.
type Event int

const (
	EventNone Event = iota
	EventClimbStart
	EventClimbEnd
)

// Thermal summarises the last completed climb.
type Thermal struct {
	Average   float64   `json:"average"`
	Gain      float64   `json:"gain"`
	Duration  float64   `json:"duration"`
	StartTime float64   `json:"start_time"`
	Location  geo.Point `json:"location"`
}

type marker struct {
	t   float64
	loc geo.Point
	alt float64
}

// CirclingMachine decides between cruise and circling from the turn rate,
// with a delay in each direction so a single turn or a short straight does
// not flip the mode.
type CirclingMachine struct {
	mode     TurnMode
	circling bool
	smoothed float64
	left     bool

	turnStart   marker
	climbStart  marker
	cruiseStart marker
	last        Thermal
	hasLast     bool
}

// NewCirclingMachine starts in cruise.
func NewCirclingMachine() *CirclingMachine {
	return &CirclingMachine{climbStart: marker{t: -1}}
}

// Update feeds one fix with the raw turn rate (deg/s, negative for left
// turns). It must only be called while flying and with advancing time.
func (m *CirclingMachine) Update(t float64, loc geo.Point, alt, turnRate float64) Event {
	rate := math.Max(-maxTurnRate, math.Min(maxTurnRate, turnRate))
	m.smoothed = m.smoothed + smoothing*(rate-m.smoothed)
	rate = m.smoothed
	m.left = rate < 0
	rate = math.Abs(rate)

	here := marker{t: t, loc: loc, alt: alt}

	switch m.mode {
	case ModeCruise:
		if rate >= MinTurnRate {
			m.turnStart = here
			m.mode = ModeWaitClimb
		}

	case ModeWaitClimb:
		if rate < MinTurnRate {
			m.mode = ModeCruise
			break
		}
		if t-m.turnStart.t > CruiseClimbSwitch {
			m.circling = true
			m.mode = ModeClimb
			m.climbStart = m.turnStart
			return EventClimbStart
		}

	case ModeClimb:
		if rate < MinTurnRate {
			m.turnStart = here
			m.mode = ModeWaitCruise
		}

	case ModeWaitCruise:
		if rate >= MinTurnRate {
			m.mode = ModeClimb
			break
		}
		if t-m.turnStart.t > ClimbCruiseSwitch {
			m.circling = false
			m.mode = ModeCruise
			m.cruiseStart = m.turnStart
			m.thermalStats()
			return EventClimbEnd
		}

	default:
		m.mode = ModeCruise
	}
	return EventNone
}

func (m *CirclingMachine) thermalStats() {
	if m.climbStart.t < 0 {
		return
	}
	dt := m.cruiseStart.t - m.climbStart.t
	gain := m.cruiseStart.alt - m.climbStart.alt
	if dt <= ThermalTimeMin || gain <= 0 {
		return
	}
	m.last = Thermal{
		Average:   gain / dt,
		Gain:      gain,
		Duration:  dt,
		StartTime: m.climbStart.t,
		Location:  m.cruiseStart.loc,
	}
	m.hasLast = true
}

// Mode is the current phase.
func (m *CirclingMachine) Mode() TurnMode { return m.mode }

// Circling reports whether the aircraft is established in a climb.
func (m *CirclingMachine) Circling() bool { return m.circling }

// TurningLeft reports the direction of the current turn.
func (m *CirclingMachine) TurningLeft() bool { return m.left }

// SmoothedRate is the low-pass filtered turn rate in deg/s.
func (m *CirclingMachine) SmoothedRate() float64 { return m.smoothed }

// LastThermal returns the last climb long enough to be meaningful.
func (m *CirclingMachine) LastThermal() (Thermal, bool) { return m.last, m.hasLast }

// Reset returns to cruise and forgets the thermal statistics.
func (m *CirclingMachine) Reset() {
	*m = *NewCirclingMachine()
}
