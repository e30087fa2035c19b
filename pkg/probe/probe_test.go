package probe

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"glidecore/pkg/db"
	"glidecore/pkg/geo"
	"glidecore/pkg/store"
	"glidecore/pkg/terrain"
)

func TestRun(t *testing.T) {
	probes := []Probe{
		{Name: "ok", Check: func(ctx context.Context) error { return nil }, Critical: true},
		{Name: "minor", Check: func(ctx context.Context) error { return errors.New("minor issue") }},
		{Name: "deadline", Check: func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				return errors.New("no deadline")
			}
			return nil
		}},
	}

	results := Run(context.Background(), probes)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Error != nil || results[2].Error != nil {
		t.Errorf("unexpected errors: %v, %v", results[0].Error, results[2].Error)
	}
	if results[1].Error == nil {
		t.Error("expected the minor probe to fail")
	}
	if err := AnalyzeResults(results); err != nil {
		t.Errorf("non-critical failure must not stop start-up: %v", err)
	}
}

func TestAnalyzeResults_Critical(t *testing.T) {
	boom := errors.New("boom")
	results := Run(context.Background(), []Probe{
		{Name: "db", Check: func(ctx context.Context) error { return boom }, Critical: true},
	})
	err := AnalyzeResults(results)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestBuiltinProbes(t *testing.T) {
	d, err := db.Init(filepath.Join(t.TempDir(), "probe.db"))
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	st := store.NewSQLiteStore(d)
	defer st.Close()

	here := geo.Point{Lat: 47.4, Lon: 8.5}
	failing := terrain.HeightFunc(func(geo.Point) (float64, error) { return 0, errors.New("outside grid") })

	tests := []struct {
		name     string
		probe    Probe
		wantErr  bool
		critical bool
	}{
		{"Database", Database(st), false, true},
		{"Terrain flat", Terrain(terrain.Flat(400), here), false, false},
		{"Terrain missing", Terrain(nil, here), true, false},
		{"Terrain failing", Terrain(failing, here), true, false},
		{"Rules known", Rules("triangle"), false, true},
		{"Rules unknown", Rules("olympic"), true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Run(context.Background(), []Probe{tt.probe})[0]
			if (r.Error != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", r.Error, tt.wantErr)
			}
			if tt.probe.Critical != tt.critical {
				t.Errorf("critical = %v, want %v", tt.probe.Critical, tt.critical)
			}
		})
	}

	if _, ok := st.GetState(context.Background(), probeKey); ok {
		t.Error("database probe left its row behind")
	}
}
