package config

import (
	"context"
	"testing"
)

// MockStateStore implements store.StateStore for testing.
type MockStateStore struct {
	data map[string]string
}

func NewMockStateStore() *MockStateStore {
	return &MockStateStore{data: make(map[string]string)}
}

func (m *MockStateStore) GetState(ctx context.Context, key string) (string, bool) {
	val, ok := m.data[key]
	return val, ok
}

func (m *MockStateStore) SetState(ctx context.Context, key, val string) error {
	m.data[key] = val
	return nil
}

func (m *MockStateStore) DeleteState(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestUnifiedProvider(t *testing.T) {
	ctx := context.Background()
	base := DefaultConfig()
	st := NewMockStateStore()
	p := NewProvider(base, st)

	t.Run("Fallbacks", func(t *testing.T) {
		if got := p.Rules(ctx); got != "sprint" {
			t.Errorf("Rules() = %s, want sprint", got)
		}
		if got := p.Handicap(ctx); got != 108 {
			t.Errorf("Handicap() = %v, want 108", got)
		}
		if got := p.SimProvider(ctx); got != "mock" {
			t.Errorf("SimProvider() = %s, want mock", got)
		}
		if !p.ResumeEnabled(ctx) {
			t.Error("ResumeEnabled() = false, want true")
		}
		if got := p.MockStartLat(ctx); got != base.Sim.Mock.StartLat {
			t.Errorf("MockStartLat() = %v", got)
		}
		if p.AppConfig() != base {
			t.Error("AppConfig() returned a different config")
		}
	})

	t.Run("StoreOverrides", func(t *testing.T) {
		_ = st.SetState(ctx, KeyOLCRules, "triangle")
		_ = st.SetState(ctx, KeyHandicap, "115")
		_ = st.SetState(ctx, KeyResumeEnabled, "false")
		_ = st.SetState(ctx, KeyMockAlt, "1200")

		if got := p.Rules(ctx); got != "triangle" {
			t.Errorf("Rules() = %s, want triangle", got)
		}
		if got := p.Handicap(ctx); got != 115 {
			t.Errorf("Handicap() = %v, want 115", got)
		}
		if p.ResumeEnabled(ctx) {
			t.Error("ResumeEnabled() = true, want false")
		}
		if got := p.MockStartAlt(ctx); got != 1200 {
			t.Errorf("MockStartAlt() = %v, want 1200", got)
		}
	})

	t.Run("BadValuesFallBack", func(t *testing.T) {
		_ = st.SetState(ctx, KeyHandicap, "-3")
		if got := p.Handicap(ctx); got != 108 {
			t.Errorf("Handicap() = %v, want 108", got)
		}
		_ = st.SetState(ctx, KeyMockLon, "east")
		if got := p.MockStartLon(ctx); got != base.Sim.Mock.StartLon {
			t.Errorf("MockStartLon() = %v", got)
		}
	})

	t.Run("NilStore", func(t *testing.T) {
		np := NewProvider(base, nil)
		if got := np.Rules(ctx); got != "sprint" {
			t.Errorf("Rules() = %s, want sprint", got)
		}
	})
}
