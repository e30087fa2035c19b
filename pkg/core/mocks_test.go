package core

import (
	"context"
	"sync"

	"glidecore/pkg/computer"
	"glidecore/pkg/olc"
	"glidecore/pkg/sim"
)

// mockSimClient implements sim.Client
type mockSimClient struct {
	mu    sync.Mutex
	fix   sim.Fix
	err   error
	state sim.State
}

func (m *mockSimClient) GetFix(ctx context.Context) (sim.Fix, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fix.Time++
	return m.fix, m.err
}

func (m *mockSimClient) GetState() sim.State {
	if m.state == "" {
		return sim.StateActive
	}
	return m.state
}

func (m *mockSimClient) Close() error { return nil }

// mockComputer implements FlightComputer
type mockComputer struct {
	mu        sync.Mutex
	processed int
	optimized int
	improve   bool
	rules     olc.Rules
	handicap  float64
	state     computer.FlightState
	restored  *computer.FlightState
}

func (m *mockComputer) ProcessFix(fix sim.Fix) computer.Derived {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed++
	return computer.Derived{Time: fix.Time, Flying: !fix.OnGround}
}

func (m *mockComputer) Optimize() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.optimized++
	return m.improve
}

func (m *mockComputer) Rules() olc.Rules {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rules
}

func (m *mockComputer) SetRules(r olc.Rules) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = r
}

func (m *mockComputer) SetHandicap(h float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handicap = h
}

func (m *mockComputer) FlightID() string { return m.state.ID }

func (m *mockComputer) Solution(r olc.Rules) olc.Solution {
	return olc.Solution{Rules: r, Valid: true, Score: 42, Distance: 42000}
}

func (m *mockComputer) Snapshot() computer.FlightState { return m.state }

func (m *mockComputer) Restore(st computer.FlightState) error {
	m.restored = &st
	return nil
}

// mapState is an in-memory store.StateStore.
type mapState struct {
	mu sync.Mutex
	m  map[string]string
}

func (s *mapState) GetState(ctx context.Context, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *mapState) SetState(ctx context.Context, key, val string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = map[string]string{}
	}
	s.m[key] = val
	return nil
}

func (s *mapState) DeleteState(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
