package config

import (
	"context"
	"strconv"

	"glidecore/pkg/store"
)

// Provider gives runtime-changeable settings, falling back to the file.
type Provider interface {
	// Contest
	Rules(ctx context.Context) string
	Handicap(ctx context.Context) float64

	// General
	SimProvider(ctx context.Context) string
	ResumeEnabled(ctx context.Context) bool

	// Mock Sim
	MockStartLat(ctx context.Context) float64
	MockStartLon(ctx context.Context) float64
	MockStartAlt(ctx context.Context) float64

	// Raw access (for components that need deep access)
	AppConfig() *Config
}

// UnifiedProvider implements Provider by bridging static Config and persistent Store.
type UnifiedProvider struct {
	base  *Config
	store store.StateStore
}

// NewProvider creates a new UnifiedProvider.
func NewProvider(base *Config, st store.StateStore) *UnifiedProvider {
	return &UnifiedProvider{
		base:  base,
		store: st,
	}
}

func (p *UnifiedProvider) AppConfig() *Config { return p.base }

// --- Implementations ---

func (p *UnifiedProvider) Rules(ctx context.Context) string {
	fallback := p.base.OLC.Rules
	if fallback == "" {
		fallback = "sprint"
	}
	return p.getString(ctx, KeyOLCRules, fallback)
}

func (p *UnifiedProvider) Handicap(ctx context.Context) float64 {
	h := p.getFloat64(ctx, KeyHandicap, p.base.OLC.Handicap)
	if h <= 0 {
		return p.base.OLC.Handicap
	}
	return h
}

func (p *UnifiedProvider) SimProvider(ctx context.Context) string {
	fallback := p.base.Sim.Provider
	if fallback == "" {
		fallback = "mock"
	}
	return p.getString(ctx, KeySimSource, fallback)
}

func (p *UnifiedProvider) ResumeEnabled(ctx context.Context) bool {
	return p.getBool(ctx, KeyResumeEnabled, p.base.Resume.Enabled)
}

func (p *UnifiedProvider) MockStartLat(ctx context.Context) float64 {
	return p.getFloat64(ctx, KeyMockLat, p.base.Sim.Mock.StartLat)
}

func (p *UnifiedProvider) MockStartLon(ctx context.Context) float64 {
	return p.getFloat64(ctx, KeyMockLon, p.base.Sim.Mock.StartLon)
}

func (p *UnifiedProvider) MockStartAlt(ctx context.Context) float64 {
	return p.getFloat64(ctx, KeyMockAlt, p.base.Sim.Mock.StartAlt)
}

// --- Helpers ---

func (p *UnifiedProvider) getString(ctx context.Context, key, fallback string) string {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			return val
		}
	}
	return fallback
}

func (p *UnifiedProvider) getFloat64(ctx context.Context, key string, fallback float64) float64 {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				return f
			}
		}
	}
	return fallback
}

func (p *UnifiedProvider) getBool(ctx context.Context, key string, fallback bool) bool {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			return val == "true"
		}
	}
	return fallback
}
