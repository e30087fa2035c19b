package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment overrides, read after the file.
const (
	EnvDBPath  = "GLIDECORE_DB"
	EnvAddress = "GLIDECORE_ADDR"
)

// Config holds the application configuration.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	DB      DBConfig      `yaml:"db"`
	Server  ServerConfig  `yaml:"server"`
	Ticker  TickerConfig  `yaml:"ticker"`
	OLC     OLCConfig     `yaml:"olc"`
	Thermal ThermalConfig `yaml:"thermal"`
	Polar   PolarConfig   `yaml:"polar"`
	Terrain TerrainConfig `yaml:"terrain"`
	Sim     SimConfig     `yaml:"sim"`
	Resume  ResumeConfig  `yaml:"resume"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server LogSettings `yaml:"server"`
	Trace  bool        `yaml:"trace"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path       string `yaml:"path"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// TickerConfig holds loop intervals.
type TickerConfig struct {
	TelemetryLoop Duration `yaml:"telemetry_loop"`
	ContestLoop   Duration `yaml:"contest_loop"`
}

// OLCConfig holds contest optimizer settings. Rules is one of sprint,
// triangle or classic. Triangles with a perimeter below
// LargeTriangleThreshold need every leg at MinLegFraction of it; larger
// ones use the 25%/45% rule.
type OLCConfig struct {
	Rules                  string   `yaml:"rules"`
	Handicap               float64  `yaml:"handicap"`
	MinDistance            Distance `yaml:"min_distance"`
	MinTimeStep            Duration `yaml:"min_time_step"`
	SprintWindow           Duration `yaml:"sprint_window"`
	FinishRadius           Distance `yaml:"finish_radius"`
	CloseFraction          float64  `yaml:"close_fraction"`
	MinLegFraction         float64  `yaml:"min_leg_fraction"`
	LargeTriangleThreshold Distance `yaml:"large_triangle_threshold"`
	HeightAllowance        Distance `yaml:"height_allowance"`
	TriangleBonus          float64  `yaml:"triangle_bonus"`
	PendingLimit           int      `yaml:"pending_limit"`
	Predict                bool     `yaml:"predict"`
}

// ThermalConfig holds thermal locator settings.
type ThermalConfig struct {
	AgreementRadius Distance `yaml:"agreement_radius"`
	MinWeight       float64  `yaml:"min_weight"`
	Sources         int      `yaml:"sources"`
	H3Resolution    int      `yaml:"h3_resolution"`
}

// PolarSample is one measured point of the glide polar.
type PolarSample struct {
	Speed float64 `yaml:"speed_kmh"`
	Sink  float64 `yaml:"sink_ms"`
}

// PolarConfig holds the glider polar as three samples.
type PolarConfig struct {
	Samples []PolarSample `yaml:"samples"`
}

// TerrainConfig holds terrain elevation settings.
type TerrainConfig struct {
	ElevationFile string   `yaml:"elevation_file"`
	CacheSize     int      `yaml:"cache_size"`
	CacheTTL      Duration `yaml:"cache_ttl"`
}

// SimConfig holds settings for the fix source.
type SimConfig struct {
	Provider string        `yaml:"provider"` // "mock"
	Mock     MockSimConfig `yaml:"mock"`
}

// MockSimConfig holds settings for the synthetic soaring flight.
type MockSimConfig struct {
	StartLat     float64  `yaml:"start_lat"`
	StartLon     float64  `yaml:"start_lon"`
	StartAlt     float64  `yaml:"start_alt"`
	StartHeading float64  `yaml:"start_heading"`
	WindSpeed    float64  `yaml:"wind_speed_ms"`
	WindBearing  float64  `yaml:"wind_bearing"`
	LegLength    Distance `yaml:"leg_length"`
	Speedup      float64  `yaml:"speedup"`
	Seed         int64    `yaml:"seed"`
}

// ResumeConfig controls the periodic flight snapshot.
type ResumeConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Interval Duration `yaml:"interval"`
	// Retention is how long finished flights are kept in the database.
	Retention Duration `yaml:"retention"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Server: LogSettings{
				Path:       "./logs/server.log",
				Level:      "INFO",
				MaxSizeMB:  20,
				MaxBackups: 3,
				MaxAgeDays: 14,
			},
		},
		DB: DBConfig{
			Path: "./data/glidecore.db",
		},
		Server: ServerConfig{
			Address: "localhost:1930",
		},
		Ticker: TickerConfig{
			TelemetryLoop: Duration(1 * time.Second),
			ContestLoop:   Duration(5 * time.Second),
		},
		OLC: OLCConfig{
			Rules:                  "sprint",
			Handicap:               108,
			MinDistance:            Distance(500),
			MinTimeStep:            Duration(1 * time.Second),
			SprintWindow:           Duration(150 * time.Minute),
			FinishRadius:           Distance(1000),
			CloseFraction:          0.2,
			MinLegFraction:         0.28,
			LargeTriangleThreshold: Distance(500000),
			HeightAllowance:        Distance(1000),
			TriangleBonus:          1.4,
			PendingLimit:           64,
			Predict:                true,
		},
		Thermal: ThermalConfig{
			AgreementRadius: Distance(250),
			MinWeight:       0.25,
			Sources:         20,
			H3Resolution:    8,
		},
		Polar: PolarConfig{
			Samples: []PolarSample{
				{Speed: 80, Sink: 0.60},
				{Speed: 120, Sink: 0.95},
				{Speed: 180, Sink: 2.30},
			},
		},
		Terrain: TerrainConfig{
			ElevationFile: "data/etopo1/etopo1_ice_g_i2.bin",
			CacheSize:     8192,
			CacheTTL:      Duration(30 * time.Minute),
		},
		Sim: SimConfig{
			Provider: "mock",
			Mock: MockSimConfig{
				StartLat:     47.4256,
				StartLon:     8.5211,
				StartAlt:     450,
				StartHeading: 120,
				WindSpeed:    3,
				WindBearing:  270,
				LegLength:    Distance(40000),
				Speedup:      1,
				Seed:         1,
			},
		},
		Resume: ResumeConfig{
			Enabled:   true,
			Interval:  Duration(30 * time.Second),
			Retention: Duration(30 * Day),
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT save back to disk.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides a few deployment settings from the environment (or a
// .env file loaded by the caller). They are never written back.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DB.Path = v
	}
	if v := os.Getenv(EnvAddress); v != "" {
		cfg.Server.Address = v
	}
}

// Validate checks values that would break the computer at start-up.
func (c *Config) Validate() error {
	var errs []error
	if c.OLC.Handicap <= 0 {
		errs = append(errs, fmt.Errorf("olc.handicap must be positive, got %v", c.OLC.Handicap))
	}
	if c.OLC.CloseFraction < 0 || c.OLC.CloseFraction >= 1 {
		errs = append(errs, fmt.Errorf("olc.close_fraction must be in [0, 1), got %v", c.OLC.CloseFraction))
	}
	// no triangle has every leg above a third of its perimeter
	if c.OLC.MinLegFraction <= 0 || c.OLC.MinLegFraction > 1.0/3 {
		errs = append(errs, fmt.Errorf("olc.min_leg_fraction must be in (0, 1/3], got %v", c.OLC.MinLegFraction))
	}
	if c.OLC.LargeTriangleThreshold <= 0 {
		errs = append(errs, fmt.Errorf("olc.large_triangle_threshold must be positive, got %v", c.OLC.LargeTriangleThreshold.Meters()))
	}
	if c.OLC.HeightAllowance < 0 {
		errs = append(errs, fmt.Errorf("olc.height_allowance must not be negative, got %v", c.OLC.HeightAllowance.Meters()))
	}
	if n := len(c.Polar.Samples); n != 0 && n != 3 {
		errs = append(errs, fmt.Errorf("polar.samples needs exactly 3 entries, got %d", n))
	}
	if c.Thermal.H3Resolution < 0 || c.Thermal.H3Resolution > 15 {
		errs = append(errs, fmt.Errorf("thermal.h3_resolution out of range: %d", c.Thermal.H3Resolution))
	}
	return errors.Join(errs...)
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# glidecore configuration
# ---------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Distance: m (meters), km (kilometers), nm (nautical miles), ft (feet)

`)
	data = append(header, data...)

	reRules := regexp.MustCompile(`(?m)^(\s+)rules:`)
	data = reRules.ReplaceAll(data, []byte("${1}# Options: sprint, triangle, classic\n${1}rules:"))

	reProvider := regexp.MustCompile(`(?m)^(\s+)provider:`)
	data = reProvider.ReplaceAll(data, []byte("${1}# Options: mock\n${1}provider:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
