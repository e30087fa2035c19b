// Package computer runs the per-fix calculations of the glide computer. It
// detects takeoff and circling, feeds the thermal locator and the contest
// optimizer, and collects the thermal sources of the flight.
package computer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"glidecore/pkg/geo"
	"glidecore/pkg/logging"
	"glidecore/pkg/olc"
	"glidecore/pkg/polar"
	"glidecore/pkg/sim"
	"glidecore/pkg/terrain"
	"glidecore/pkg/thermal"
	"glidecore/pkg/tracker"
)

// ClockResetThreshold is how far (s) the GPS clock may jump back before the
// flight is restarted. Smaller reversals only drop the fix.
const ClockResetThreshold = 300.0

const (
	trackWindow = 4
	varioWindow = 30.0
)

// Tracker component names.
const (
	CompFix     = "fix"
	CompOLC     = "olc"
	CompThermal = "thermal"
	CompTerrain = "terrain"
)

// Options configures a Computer.
type Options struct {
	OLC          olc.Settings
	Rules        olc.Rules
	Thermal      thermal.Settings
	Sources      int
	H3Resolution int
	// Terrain may be nil; thermal bases and AGL are then not computed.
	Terrain terrain.HeightGetter
	// Polar may be nil, which disables provisional contest results.
	Polar   *polar.Polar
	Tracker *tracker.Tracker
}

// Contest is the summary of the solution for the active rules.
type Contest struct {
	Rules    string  `json:"rules"`
	Valid    bool    `json:"valid"`
	Score    float64 `json:"score"`
	Distance float64 `json:"distance_m"`
	Time     float64 `json:"time_s"`
	Finished bool    `json:"finished"`
	Points   int     `json:"points"`
}

// Derived is what the computer makes of the latest fix.
type Derived struct {
	FlightID     string           `json:"flight_id"`
	Time         float64          `json:"time"`
	Location     geo.Point        `json:"location"`
	Altitude     float64          `json:"altitude"`
	Flying       bool             `json:"flying"`
	Mode         string           `json:"mode"`
	Circling     bool             `json:"circling"`
	TurningLeft  bool             `json:"turning_left"`
	TurnRate     float64          `json:"turn_rate"`
	AverageClimb float64          `json:"average_climb"`
	GroundAlt    float64          `json:"ground_alt"` // -1 when unknown
	AGL          float64          `json:"agl"`
	Thermal      thermal.Estimate `json:"thermal"`
	LastThermal  *sim.Thermal     `json:"last_thermal,omitempty"`
	Contest      Contest          `json:"contest"`
}

// Computer owns one flight's worth of calculation state. ProcessFix must be
// called from a single goroutine; everything else is safe from any.
type Computer struct {
	mu   sync.RWMutex
	opts Options

	opt     *olc.Optimizer
	loc     *thermal.Locator
	sources *Sources
	circ    *sim.CirclingMachine
	flight  sim.FlightDetector
	track   *geo.TrackBuffer
	vario   *sim.VarioBuffer

	rules    olc.Rules
	id       string
	started  time.Time
	lastTime float64
	hasTime  bool

	lastEst      thermal.Estimate
	climbStarted float64
	lastThermal  *sim.Thermal
	derived      Derived
}

var noEstimate = thermal.Estimate{R: -1}

// New builds a computer waiting on the ground.
func New(opts Options) *Computer {
	if !opts.Rules.Valid() {
		opts.Rules = olc.Sprint
	}
	var glide olc.Glide
	if opts.Polar != nil {
		glide = opts.Polar
	}
	c := &Computer{
		opts:    opts,
		opt:     olc.NewOptimizer(opts.OLC, glide),
		loc:     thermal.NewLocator(opts.Thermal),
		sources: NewSources(opts.Sources, opts.H3Resolution),
		circ:    sim.NewCirclingMachine(),
		track:   geo.NewTrackBuffer(trackWindow),
		vario:   sim.NewVarioBuffer(varioWindow),
		rules:   opts.Rules,
	}
	c.opt.SetRules(opts.Rules)
	c.resetLocked()
	c.derived = Derived{FlightID: c.id, GroundAlt: -1, Thermal: noEstimate, Mode: c.circ.Mode().String()}
	return c
}

// resetLocked starts a new flight: fresh id, empty buffers.
func (c *Computer) resetLocked() {
	c.opt.ResetFlight()
	c.loc.Reset()
	c.circ.Reset()
	c.track.Reset()
	c.vario.Reset()
	c.sources.Reset()
	c.id = uuid.NewString()
	c.started = time.Now()
	c.lastEst = noEstimate
	c.climbStarted = -1
	c.lastThermal = nil
}

// ProcessFix runs one calculation cycle.
func (c *Computer) ProcessFix(fix sim.Fix) Derived {
	c.mu.Lock()
	if c.hasTime && fix.Time <= c.lastTime {
		if c.lastTime-fix.Time <= ClockResetThreshold {
			c.opts.Tracker.TrackRejected(CompFix)
			d := c.derived
			c.mu.Unlock()
			return d
		}
		slog.Warn("GPS clock went backwards, restarting flight", "from", c.lastTime, "to", fix.Time)
		c.opts.Tracker.TrackEvent(CompFix)
		c.resetLocked()
		c.flight = sim.FlightDetector{}
	}
	c.hasTime, c.lastTime = true, fix.Time
	c.opts.Tracker.TrackAccepted(CompFix)

	alt := fix.NavAltitude()
	c.track.Push(fix.Location, fix.Time, fix.Track)
	rate := c.track.TurnRate()

	flying, changed := c.flight.Update(fix.Time, fix.GroundSpeed, fix.OnGround)
	if changed {
		if flying {
			c.resetLocked()
			slog.Info("Takeoff detected", "flight", c.id, "time", fix.Time)
		} else {
			slog.Info("Landing detected", "flight", c.id, "time", fix.Time)
		}
		c.opts.Tracker.TrackEvent(CompFix)
	}
	climb := c.vario.Update(fix.Time, alt)

	var ended *sim.Thermal
	var baseLoc geo.Point
	if flying {
		switch c.circ.Update(fix.Time, fix.Location, alt, rate) {
		case sim.EventClimbStart:
			c.loc.Reset()
			c.lastEst = noEstimate
			c.opts.Tracker.TrackEvent(CompThermal)
			logging.TraceDefault("climb started", "time", fix.Time)
		case sim.EventClimbEnd:
			if th, ok := c.circ.LastThermal(); ok && th.StartTime != c.climbStarted {
				c.climbStarted = th.StartTime
				ended = &th
				c.lastThermal = &th
				baseLoc = th.Location
				if c.lastEst.Available() {
					baseLoc = c.lastEst.Location
				}
			}
		}

		if c.circ.Circling() {
			c.loc.AddPoint(fix.Time, fix.Location, fix.NettoVario)
			if est := c.loc.Update(fix.Time, fix.Location, fix.WindSpeed, fix.WindBearing, fix.Track); est.Available() {
				c.lastEst = est
			}
		} else {
			c.loc.Reset()
			c.lastEst = noEstimate
		}

		lo, hi := fix.GPSAltitude, fix.GPSAltitude
		if fix.BaroAltitude != 0 {
			lo, hi = min(lo, fix.BaroAltitude), max(hi, fix.BaroAltitude)
		}
		if c.opt.AddPoint(fix.Location, lo, hi, fix.Time, fix.Track) {
			c.opts.Tracker.TrackAccepted(CompOLC)
		} else {
			c.opts.Tracker.TrackRejected(CompOLC)
		}
	}

	sol := c.opt.Solution(c.rules)
	d := Derived{
		FlightID:     c.id,
		Time:         fix.Time,
		Location:     fix.Location,
		Altitude:     alt,
		Flying:       flying,
		Mode:         c.circ.Mode().String(),
		Circling:     c.circ.Circling(),
		TurningLeft:  c.circ.TurningLeft(),
		TurnRate:     c.circ.SmoothedRate(),
		AverageClimb: climb,
		GroundAlt:    -1,
		Thermal:      c.lastEst,
		LastThermal:  c.lastThermal,
		Contest: Contest{
			Rules:    c.rules.String(),
			Valid:    sol.Valid,
			Score:    sol.Score,
			Distance: sol.Distance,
			Time:     sol.Time,
			Finished: sol.Finished,
			Points:   c.opt.N(),
		},
	}
	c.mu.Unlock()

	// Terrain is queried with no computer lock held.
	if ended != nil {
		c.addSource(fix, baseLoc, alt, ended.Average)
	}
	if c.opts.Terrain != nil {
		if h, err := c.opts.Terrain.Height(fix.Location); err == nil {
			d.GroundAlt, d.AGL = h, alt-h
		} else {
			c.opts.Tracker.TrackError(CompTerrain)
			logging.TraceDefault("terrain lookup failed", "error", err)
		}
	}

	c.mu.Lock()
	if c.lastTime == fix.Time {
		c.derived = d
	}
	c.mu.Unlock()
	return d
}

func (c *Computer) addSource(fix sim.Fix, loc geo.Point, alt, climb float64) {
	b := thermal.EstimateThermalBase(c.opts.Terrain, loc, alt, climb, fix.WindSpeed, fix.WindBearing)
	src, err := c.sources.Add(b, fix.Time)
	switch {
	case errors.Is(err, ErrNoGround):
		return
	case err != nil:
		c.opts.Tracker.TrackError(CompThermal)
		slog.Warn("Failed to store thermal source", "error", err)
		return
	}
	c.opts.Tracker.TrackEvent(CompThermal)
	slog.Info("Thermal source estimated", "cell", src.Cell,
		"lat", src.Location.Lat, "lon", src.Location.Lon, "ground_alt", src.GroundAlt, "climb", climb)
}

// Optimize runs one contest pass for the active rules.
func (c *Computer) Optimize() bool {
	c.mu.RLock()
	rules, flying := c.rules, c.flight.Flying()
	c.mu.RUnlock()
	return c.opt.Optimize(rules, flying)
}

// SetRules switches the active contest rules.
func (c *Computer) SetRules(r olc.Rules) {
	if !r.Valid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if r != c.rules {
		slog.Info("Contest rules changed", "from", c.rules, "to", r)
	}
	c.rules = r
	c.opt.SetRules(r)
}

// SetHandicap changes the glider index used for future scores.
func (c *Computer) SetHandicap(h float64) { c.opt.SetHandicap(h) }

// Rules is the active contest rule.
func (c *Computer) Rules() olc.Rules {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rules
}

// FlightID identifies the current flight.
func (c *Computer) FlightID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id
}

// Started is the wall-clock time the current flight began.
func (c *Computer) Started() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.started
}

// Flying reports the takeoff detector state.
func (c *Computer) Flying() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.flight.Flying()
}

// Derived returns the result of the last processed fix.
func (c *Computer) Derived() Derived {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.derived
}

// Solution returns a copy of the best solution for r.
func (c *Computer) Solution(r olc.Rules) olc.Solution { return c.opt.Solution(r) }

// Solutions returns the best solution for every rule.
func (c *Computer) Solutions() []olc.Solution {
	out := make([]olc.Solution, 0, 3)
	for _, r := range []olc.Rules{olc.Sprint, olc.Triangle, olc.Classic} {
		out = append(out, c.opt.Solution(r))
	}
	return out
}

// TrackPoints are the contest buffer points in time order.
func (c *Computer) TrackPoints() []geo.Point { return c.opt.Points() }

// ContestStats are the optimizer counters.
func (c *Computer) ContestStats() olc.Stats { return c.opt.Stats() }

// Sources returns the thermal sources, oldest first.
func (c *Computer) Sources() []Source { return c.sources.List() }

// FlightState is everything needed to resume the flight after a restart.
type FlightState struct {
	ID       string       `msgpack:"id"`
	Started  time.Time    `msgpack:"started"`
	Rules    olc.Rules    `msgpack:"rules"`
	Flying   bool         `msgpack:"flying"`
	LastTime float64      `msgpack:"last_time"`
	Location geo.Point    `msgpack:"loc"`
	Altitude float64      `msgpack:"alt"`
	OLC      olc.Snapshot `msgpack:"olc"`
	Sources  []Source     `msgpack:"sources"`
}

// Snapshot captures the flight for persistence.
func (c *Computer) Snapshot() FlightState {
	c.mu.RLock()
	st := FlightState{
		ID:       c.id,
		Started:  c.started,
		Rules:    c.rules,
		Flying:   c.flight.Flying(),
		LastTime: c.lastTime,
		Location: c.derived.Location,
		Altitude: c.derived.Altitude,
	}
	c.mu.RUnlock()
	st.OLC = c.opt.Snapshot()
	st.Sources = c.sources.List()
	return st
}

// Restore continues a persisted flight. The circling state and the
// thermal locator start over.
func (c *Computer) Restore(st FlightState) error {
	if st.ID == "" {
		return fmt.Errorf("restore flight: missing id")
	}
	if err := c.opt.Restore(st.OLC); err != nil {
		return fmt.Errorf("restore flight %s: %w", st.ID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = st.ID
	c.started = st.Started
	if st.Rules.Valid() {
		c.rules = st.Rules
		c.opt.SetRules(st.Rules)
	}
	c.lastTime, c.hasTime = st.LastTime, st.LastTime > 0
	c.flight = sim.FlightDetector{}
	c.flight.Force(st.Flying)
	c.loc.Reset()
	c.circ.Reset()
	c.track.Reset()
	c.vario.Reset()
	c.sources.Load(st.Sources)
	c.lastEst = noEstimate
	c.climbStarted = -1
	c.lastThermal = nil
	c.derived.FlightID = st.ID
	c.derived.Location, c.derived.Altitude = st.Location, st.Altitude
	return nil
}
