package mocksim

import (
	"context"
	"sync"
	"time"

	"glidecore/pkg/sim"
	"glidecore/pkg/terrain"
)

const tickRateMs = 100

// Config holds the start and weather of the synthetic flight.
type Config struct {
	StartLat     float64
	StartLon     float64
	StartAlt     float64
	StartHeading float64
	WindSpeed    float64
	WindBearing  float64
	LegLength    float64
	Speedup      float64
	Seed         int64
	Terrain      terrain.HeightGetter
	// Resume continues a restored flight instead of starting the day over.
	Resume *Resume
}

// MockClient implements sim.Client on top of a Flight stepped in real time.
type MockClient struct {
	mu     sync.Mutex
	flight *Flight
	fix    sim.Fix
	speed  float64
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewClient creates a new mock fix source and starts its clock.
func NewClient(cfg Config) *MockClient {
	speed := cfg.Speedup
	if speed <= 0 {
		speed = 1
	}
	m := &MockClient{
		flight: NewFlight(cfg),
		speed:  speed,
		stopCh: make(chan struct{}),
	}
	m.fix = m.flight.Step(0)

	m.wg.Add(1)
	go m.physicsLoop()
	return m
}

// GetFix returns the latest fix of the simulated glider.
func (m *MockClient) GetFix(ctx context.Context) (sim.Fix, error) {
	if err := ctx.Err(); err != nil {
		return sim.Fix{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fix, nil
}

// GetState returns the current connection/activity state.
// Mock is always active.
func (m *MockClient) GetState() sim.State {
	return sim.StateActive
}

// Phase is the current phase of the simulated flight.
func (m *MockClient) Phase() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flight.Phase()
}

// Close stops the physics loop and releases resources.
func (m *MockClient) Close() error {
	close(m.stopCh)
	m.wg.Wait()
	return nil
}

func (m *MockClient) physicsLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(time.Duration(tickRateMs) * time.Millisecond)
	defer ticker.Stop()

	dt := float64(tickRateMs) / 1000.0 * m.speed
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.mu.Lock()
			m.fix = m.flight.Step(dt)
			m.mu.Unlock()
		}
	}
}
