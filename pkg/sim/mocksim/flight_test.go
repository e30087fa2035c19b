package mocksim

import (
	"context"
	"math"
	"testing"
	"time"

	"glidecore/pkg/geo"
	"glidecore/pkg/sim"
	"glidecore/pkg/terrain"
)

func testConfig() Config {
	return Config{
		StartLat:     47.0,
		StartLon:     8.0,
		StartAlt:     400,
		StartHeading: 90,
		WindSpeed:    0,
		WindBearing:  270,
		LegLength:    20000,
		Seed:         7,
	}
}

func TestFlight_Phases(t *testing.T) {
	f := NewFlight(testConfig())

	seen := map[string]bool{}
	var last sim.Fix
	for i := 0; i < 3*3600; i++ {
		fix := f.Step(1)
		seen[f.Phase()] = true
		if i > 0 && fix.Time <= last.Time {
			t.Fatalf("time not increasing at step %d", i)
		}
		last = fix
	}

	for _, p := range []string{PhaseGround, PhaseLaunch, PhaseCruise, PhaseClimb} {
		if !seen[p] {
			t.Errorf("phase %s never reached", p)
		}
	}
	if f.Laps() < 1 {
		t.Errorf("expected at least one triangle in 3h, got %d", f.Laps())
	}
	if last.GPSAltitude < 400+floorHeight-100 {
		t.Errorf("glider sank below the floor: %v", last.GPSAltitude)
	}
}

func TestFlight_Resume(t *testing.T) {
	at := geo.DestinationPoint(geo.Point{Lat: 47, Lon: 8}, 8000, 90)
	tests := []struct {
		name     string
		resume   Resume
		onGround bool
		phase    string
	}{
		{"Airborne", Resume{Time: 40000, Location: at, Altitude: 1900, Flying: true}, false, PhaseCruise},
		{"Landed", Resume{Time: 40000, Location: at, Altitude: 400}, true, PhaseGround},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Resume = &tt.resume
			f := NewFlight(cfg)

			fix := f.Step(1)
			if fix.Time != tt.resume.Time+1 {
				t.Errorf("time = %v, want %v", fix.Time, tt.resume.Time+1)
			}
			if fix.OnGround != tt.onGround {
				t.Errorf("on ground = %v, want %v", fix.OnGround, tt.onGround)
			}
			if f.Phase() != tt.phase {
				t.Errorf("phase = %s, want %s", f.Phase(), tt.phase)
			}
			if tt.resume.Flying && geo.Distance(fix.Location, at) > 100 {
				t.Errorf("resumed %v m away from the saved position", geo.Distance(fix.Location, at))
			}
			if !tt.resume.Flying && fix.GroundSpeed > launchSpeed/groundRollTime+0.01 {
				t.Errorf("ground roll should start over, speed %v", fix.GroundSpeed)
			}
		})
	}
}

func TestFlight_GroundRoll(t *testing.T) {
	f := NewFlight(testConfig())
	fix := f.Step(1)
	if !fix.OnGround {
		t.Error("first fix should be on the ground")
	}
	if fix.Vario != 0 {
		t.Errorf("vario on the ground = %v", fix.Vario)
	}
	for i := 0; i < 30; i++ {
		fix = f.Step(1)
	}
	if fix.OnGround || fix.GroundSpeed < sim.TakeoffSpeed {
		t.Errorf("expected airborne after the roll, got %+v", fix)
	}
}

func TestFlight_CirclingTurnRate(t *testing.T) {
	f := NewFlight(testConfig())
	for f.Phase() != PhaseClimb {
		f.Step(1)
	}
	tb := geo.NewTrackBuffer(5)
	var rate float64
	for i := 0; i < 10; i++ {
		fix := f.Step(1)
		tb.Push(fix.Location, fix.Time, fix.Track)
		rate = tb.TurnRate()
	}
	if math.Abs(rate-circleRate) > 2 {
		t.Errorf("turn rate in climb = %v, want about %v", rate, circleRate)
	}
}

func TestFlight_WindDrift(t *testing.T) {
	cfg := testConfig()
	cfg.WindSpeed = 5
	cfg.WindBearing = 270
	f := NewFlight(cfg)
	for f.Phase() != PhaseClimb {
		f.Step(1)
	}
	start := f.Step(1).Location
	// 24 s is very nearly a full circle, so the offset is mostly drift.
	var end geo.Point
	for i := 0; i < 24; i++ {
		end = f.Step(1).Location
	}
	if d := geo.Distance(start, end); d < 80 || d > 160 {
		t.Errorf("drift over a circle = %v m, want about 120", d)
	}
	if b := geo.Bearing(start, end); math.Abs(b-90) > 30 {
		t.Errorf("drift bearing = %v, want east", b)
	}
}

func TestFlight_Terrain(t *testing.T) {
	cfg := testConfig()
	cfg.Terrain = terrain.Flat(900)
	f := NewFlight(cfg)
	for f.Phase() != PhaseCruise {
		f.Step(1)
	}
	if alt := f.Step(1).GPSAltitude; alt < 900+launchHeight-10 {
		t.Errorf("launch should reach %v above terrain, got %v", launchHeight, alt)
	}
}

func TestMockClient(t *testing.T) {
	cfg := testConfig()
	cfg.Speedup = 50
	c := NewClient(cfg)
	defer c.Close()

	ctx := context.Background()
	first, err := c.GetFix(ctx)
	if err != nil {
		t.Fatalf("GetFix() error = %v", err)
	}
	if c.GetState() != sim.StateActive {
		t.Errorf("state = %s", c.GetState())
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := c.GetFix(cctx); err == nil {
		t.Error("expected error on cancelled context")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		fix, _ := c.GetFix(ctx)
		if fix.Time > first.Time {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("mock clock did not advance")
}
