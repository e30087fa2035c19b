package core

import (
	"context"
	"testing"
	"time"

	"glidecore/pkg/computer"
	"glidecore/pkg/config"
)

type mockPruner struct {
	called    bool
	olderThan time.Duration
	result    int64
}

func (m *mockPruner) PruneFlights(olderThan time.Duration) (int64, error) {
	m.called = true
	m.olderThan = olderThan
	return m.result, nil
}

func TestEvictionJob_ShouldFire(t *testing.T) {
	tests := []struct {
		name      string
		flying    bool
		timeSince time.Duration
		wantFire  bool
	}{
		{"Flying - no fire", true, 2 * time.Hour, false},
		{"On ground, recent - no fire", false, 10 * time.Minute, false},
		{"On ground, expired - fire", false, 2 * time.Hour, true},
		{"On ground, exactly 1h - fire", false, time.Hour, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewEvictionJob(config.NewProvider(config.DefaultConfig(), nil), &mockPruner{})
			job.lastRunTime = time.Now().Add(-tt.timeSince)
			if got := job.ShouldFire(&computer.Derived{Flying: tt.flying}); got != tt.wantFire {
				t.Errorf("ShouldFire() = %v, want %v", got, tt.wantFire)
			}
		})
	}
}

func TestEvictionJob_Run(t *testing.T) {
	cfg := config.DefaultConfig()
	p := &mockPruner{result: 3}
	job := NewEvictionJob(config.NewProvider(cfg, nil), p)
	job.Run(context.Background(), &computer.Derived{})

	if !p.called {
		t.Fatal("pruner not called")
	}
	if p.olderThan != 30*config.Day {
		t.Errorf("retention = %v, want 30d", p.olderThan)
	}
	if job.ShouldFire(&computer.Derived{}) {
		t.Error("should wait an hour before the next run")
	}

	// zero retention keeps everything
	cfg.Resume.Retention = 0
	p2 := &mockPruner{}
	job = NewEvictionJob(config.NewProvider(cfg, nil), p2)
	job.Run(context.Background(), &computer.Derived{})
	if p2.called {
		t.Error("pruner called with retention disabled")
	}
}
