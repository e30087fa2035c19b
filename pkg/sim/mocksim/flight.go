package mocksim

import (
	"math"
	"math/rand"

	"glidecore/pkg/geo"
	"glidecore/pkg/sim"
	"glidecore/pkg/terrain"
)

// Phases of the synthetic flight.
const (
	PhaseGround = "GROUND"
	PhaseLaunch = "LAUNCH"
	PhaseCruise = "CRUISE"
	PhaseClimb  = "CLIMB"
)

const (
	groundRollTime = 20.0
	launchSpeed    = 30.0
	launchClimb    = 3.0
	launchHeight   = 1000.0
	cruiseSpeed    = 38.0
	cruiseSink     = 1.1
	circleSpeed    = 25.0
	circleRate     = 15.0 // deg/s
	floorHeight    = 600.0
	ceilingHeight  = 1800.0
	turnpointReach = 500.0
	dayStart       = 10 * 3600.0
)

// Resume is where a restored flight left off. Time is the last fix time
// the computer has seen; the flight clock continues from there.
type Resume struct {
	Time     float64
	Location geo.Point
	Altitude float64
	Flying   bool
}

// Flight is a deterministic glider flight around a triangle: a launch,
// then glides between turnpoints broken by thermal climbs whenever the
// glider gets low. Step advances it by a fixed amount of flight time.
type Flight struct {
	cfg     Config
	rng     *rand.Rand
	terrain terrain.HeightGetter

	phase     string
	t         float64
	rollStart float64
	pos       geo.Point
	alt       float64
	heading   float64
	speed     float64
	climb     float64
	ground    float64

	home       geo.Point
	turnpoints []geo.Point
	next       int
	lift       float64
	laps       int
}

// NewFlight prepares a flight on the ground at the configured start.
func NewFlight(cfg Config) *Flight {
	f := &Flight{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		terrain:   cfg.Terrain,
		phase:     PhaseGround,
		t:         dayStart,
		rollStart: dayStart,
		pos:       geo.Point{Lat: cfg.StartLat, Lon: cfg.StartLon},
		alt:       cfg.StartAlt,
		heading:   cfg.StartHeading,
		ground:    cfg.StartAlt,
	}
	f.home = f.pos
	leg := cfg.LegLength
	if leg <= 0 {
		leg = 40000
	}
	a := geo.DestinationPoint(f.home, leg, cfg.StartHeading)
	b := geo.DestinationPoint(a, leg, cfg.StartHeading+120)
	f.turnpoints = []geo.Point{a, b, f.home}

	if r := cfg.Resume; r != nil && r.Time > 0 {
		f.t, f.rollStart = r.Time, r.Time
		if r.Flying && !r.Location.IsZero() {
			f.pos, f.alt = r.Location, r.Altitude
			f.updateGround()
			f.startCruise()
		}
	}
	return f
}

// Phase is the current flight phase.
func (f *Flight) Phase() string { return f.phase }

// Laps is the number of completed triangles.
func (f *Flight) Laps() int { return f.laps }

// Turnpoints are the corners of the task triangle, ending at home.
func (f *Flight) Turnpoints() []geo.Point { return f.turnpoints }

// Step advances the flight by dt seconds and returns the resulting fix.
func (f *Flight) Step(dt float64) sim.Fix {
	f.t += dt
	f.updateGround()

	switch f.phase {
	case PhaseGround:
		f.speed = math.Min(launchSpeed, (f.t-f.rollStart)/groundRollTime*launchSpeed)
		f.climb = 0
		if f.t-f.rollStart >= groundRollTime {
			f.phase = PhaseLaunch
		}
	case PhaseLaunch:
		f.speed, f.climb = launchSpeed, launchClimb
		if f.alt-f.ground >= launchHeight {
			f.startCruise()
		}
	case PhaseCruise:
		f.cruise()
	case PhaseClimb:
		f.heading = math.Mod(f.heading+circleRate*dt, 360)
		if f.alt-f.ground >= ceilingHeight {
			f.startCruise()
		}
	}

	f.alt += f.climb * dt
	onGround := f.phase == PhaseGround
	f.move(dt, !onGround)

	vx, vy := f.groundVelocity(!onGround)
	track := math.Mod(math.Atan2(vx, vy)*180/math.Pi+360, 360)
	netto := f.climb
	if f.phase == PhaseCruise {
		netto += cruiseSink
	}
	return sim.Fix{
		Time:         f.t,
		Location:     f.pos,
		GPSAltitude:  f.alt,
		BaroAltitude: f.alt,
		GroundSpeed:  math.Hypot(vx, vy),
		Track:        track,
		Vario:        f.climb,
		NettoVario:   netto,
		WindSpeed:    f.cfg.WindSpeed,
		WindBearing:  f.cfg.WindBearing,
		OnGround:     onGround,
	}
}

func (f *Flight) updateGround() {
	if f.terrain == nil {
		return
	}
	if h, err := f.terrain.Height(f.pos); err == nil {
		f.ground = h
	}
}

func (f *Flight) startCruise() {
	f.phase = PhaseCruise
	f.speed, f.climb = cruiseSpeed, -cruiseSink
}

func (f *Flight) cruise() {
	tp := f.turnpoints[f.next]
	if geo.Distance(f.pos, tp) < turnpointReach {
		f.next++
		if f.next == len(f.turnpoints) {
			f.next = 0
			f.laps++
		}
		tp = f.turnpoints[f.next]
	}
	f.heading = geo.Bearing(f.pos, tp)

	if f.alt-f.ground < floorHeight {
		f.phase = PhaseClimb
		f.lift = 1.5 + 1.5*f.rng.Float64()
		f.speed, f.climb = circleSpeed, f.lift
	}
}

// groundVelocity is air velocity plus wind drift, east/north in m/s.
func (f *Flight) groundVelocity(airborne bool) (float64, float64) {
	h := f.heading * math.Pi / 180
	vx, vy := f.speed*math.Sin(h), f.speed*math.Cos(h)
	if airborne {
		wx, wy := geo.WindVector(f.cfg.WindSpeed, f.cfg.WindBearing)
		vx, vy = vx+wx, vy+wy
	}
	return vx, vy
}

func (f *Flight) move(dt float64, airborne bool) {
	vx, vy := f.groundVelocity(airborne)
	d := math.Hypot(vx, vy) * dt
	if d <= 0 {
		return
	}
	f.pos = geo.DestinationPoint(f.pos, d, math.Atan2(vx, vy)*180/math.Pi)
}
