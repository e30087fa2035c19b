package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"glidecore/pkg/computer"
	"glidecore/pkg/config"
	"glidecore/pkg/sim"
)

type recordingSink struct {
	mu      sync.Mutex
	updates int
	states  []sim.State
}

func (s *recordingSink) Update(d *computer.Derived) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
}

func (s *recordingSink) UpdateState(st sim.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, st)
}

func TestScheduler_JobExecution(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Ticker.TelemetryLoop = config.Duration(10 * time.Millisecond) // Fast loop

	mockSim := &mockSimClient{state: sim.StateActive}
	comp := &mockComputer{}
	sink := &recordingSink{}
	sched := NewScheduler(cfg, mockSim, comp, sink)

	var firedCount int32
	fired := make(chan struct{})
	var once sync.Once

	sched.AddJob(NewTimeJob("TestTime", time.Hour, func(ctx context.Context, d computer.Derived) {
		atomic.AddInt32(&firedCount, 1)
		once.Do(func() { close(fired) })
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Start(ctx)

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not fire")
	}
	time.Sleep(50 * time.Millisecond)
	cancel()

	if n := atomic.LoadInt32(&firedCount); n == 0 {
		t.Error("job never fired")
	}
	comp.mu.Lock()
	processed := comp.processed
	comp.mu.Unlock()
	if processed == 0 {
		t.Error("no fix was processed")
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.updates == 0 || len(sink.states) == 0 {
		t.Errorf("sink not fed: updates=%d states=%d", sink.updates, len(sink.states))
	}
}

func TestScheduler_Tick(t *testing.T) {
	tests := []struct {
		name          string
		state         sim.State
		err           error
		wantProcessed int
		wantUpdates   int
	}{
		{"Active", sim.StateActive, nil, 1, 1},
		{"Inactive source", sim.StateInactive, nil, 0, 0},
		{"Disconnected", sim.StateDisconnected, nil, 0, 0},
		{"Read error", sim.StateActive, sim.ErrNotConnected, 0, 0},
		{"Other error", sim.StateActive, errors.New("boom"), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp := &mockComputer{}
			sink := &recordingSink{}
			sched := NewScheduler(config.DefaultConfig(), &mockSimClient{state: tt.state, err: tt.err}, comp, sink)
			sched.tick(context.Background())

			if comp.processed != tt.wantProcessed {
				t.Errorf("processed = %d, want %d", comp.processed, tt.wantProcessed)
			}
			if sink.updates != tt.wantUpdates {
				t.Errorf("updates = %d, want %d", sink.updates, tt.wantUpdates)
			}
			if len(sink.states) != 1 || sink.states[0] != tt.state {
				t.Errorf("states = %v, want [%s]", sink.states, tt.state)
			}
		})
	}
}
