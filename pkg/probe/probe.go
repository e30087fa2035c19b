// Package probe runs the start-up checks of the glide computer and decides
// whether it may start.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"glidecore/pkg/geo"
	"glidecore/pkg/olc"
	"glidecore/pkg/store"
	"glidecore/pkg/terrain"
)

const checkTimeout = 5 * time.Second

const probeKey = "probe_roundtrip"

// CheckFunc returns nil when the check passes.
type CheckFunc func(ctx context.Context) error

// Probe is a single start-up check. A failing Critical probe stops start-up.
type Probe struct {
	Name     string
	Check    CheckFunc
	Critical bool
}

// Result holds the outcome of a single probe.
type Result struct {
	Probe    Probe
	Error    error
	Duration time.Duration
}

// Run executes the probes in order, each with its own timeout.
func Run(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, len(probes))
	for i, p := range probes {
		start := time.Now()
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := p.Check(cctx)
		cancel()
		results[i] = Result{Probe: p, Error: err, Duration: time.Since(start)}
	}
	return results
}

// AnalyzeResults logs a summary and joins the errors of failed critical probes.
func AnalyzeResults(results []Result) error {
	var critical []error

	slog.Info("Startup Checks Summary")
	for _, r := range results {
		status := "PASS"
		if r.Error != nil {
			status = "FAIL"
		}
		msg := fmt.Sprintf("[%s] %-16s (%v)", status, r.Probe.Name, r.Duration.Round(time.Millisecond))
		if r.Error == nil {
			slog.Info(msg)
			continue
		}
		if r.Probe.Critical {
			slog.Error(msg, "error", r.Error)
			critical = append(critical, fmt.Errorf("%s: %w", r.Probe.Name, r.Error))
		} else {
			slog.Warn(msg, "error", r.Error)
		}
	}
	return errors.Join(critical...)
}

// Database writes, reads back and deletes a state row.
func Database(st store.StateStore) Probe {
	return Probe{
		Name:     "Database",
		Critical: true,
		Check: func(ctx context.Context) error {
			want := time.Now().UTC().Format(time.RFC3339Nano)
			if err := st.SetState(ctx, probeKey, want); err != nil {
				return err
			}
			defer func() { _ = st.DeleteState(ctx, probeKey) }()
			got, ok := st.GetState(ctx, probeKey)
			if !ok || got != want {
				return fmt.Errorf("read back %q, want %q", got, want)
			}
			return nil
		},
	}
}

// Terrain asks for the ground height at p. Without terrain the computer still
// runs, only thermal bases and AGL are missing, so this probe is not critical.
func Terrain(h terrain.HeightGetter, p geo.Point) Probe {
	return Probe{
		Name: "Terrain",
		Check: func(ctx context.Context) error {
			if h == nil {
				return errors.New("no elevation data loaded")
			}
			_, err := h.Height(p)
			return err
		},
	}
}

// Rules checks that the configured contest rules are known.
func Rules(name string) Probe {
	return Probe{
		Name:     "Contest rules",
		Critical: true,
		Check: func(ctx context.Context) error {
			_, err := olc.ParseRules(name)
			return err
		},
	}
}
