package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glidecore/pkg/config"
	"glidecore/pkg/db"
	"glidecore/pkg/store"
	"glidecore/pkg/tracker"
	"glidecore/pkg/version"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.SQLiteStore, chan struct{}) {
	t.Helper()
	d, err := db.Init(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	st := store.NewSQLiteStore(d)
	t.Cleanup(func() { st.Close() })

	view := sampleView()
	tel := NewTelemetryHandler()
	tr := tracker.New()
	tr.TrackAccepted("fix")

	stopped := make(chan struct{})
	srv := NewServer("", Handlers{
		Telemetry: tel,
		Contest:   NewContestHandler(view),
		Thermal:   NewThermalHandler(view),
		Config:    NewConfigHandler(st, config.NewProvider(config.DefaultConfig(), st)),
		Stats:     NewStatsHandler(tr, view, tel),
		Flights:   NewFlightsHandler(st, view.FlightID),
	}, func() { close(stopped) })

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts, st, stopped
}

func TestServer_Routes(t *testing.T) {
	ts, _, _ := newTestServer(t)

	tests := []struct {
		method   string
		path     string
		wantCode int
		contains string
	}{
		{"GET", "/health", http.StatusOK, "OK"},
		{"GET", "/api/version", http.StatusOK, version.Version},
		{"GET", "/api/telemetry", http.StatusOK, `"sim_state":"disconnected"`},
		{"GET", "/api/contest", http.StatusOK, `"active":"sprint"`},
		{"GET", "/api/contest/geojson", http.StatusOK, `"FeatureCollection"`},
		{"GET", "/api/contest/classic", http.StatusOK, `"rules":"classic"`},
		{"GET", "/api/thermal", http.StatusOK, `"circling":true`},
		{"GET", "/api/thermal/sources", http.StatusOK, "881f8d4b29fffff"},
		{"GET", "/api/thermal/sources/geojson", http.StatusOK, "881f8d4b2dfffff"},
		{"GET", "/api/config", http.StatusOK, `"handicap":108`},
		{"GET", "/api/log/latest", http.StatusOK, `"log"`},
		{"GET", "/api/flights", http.StatusOK, "[]"},
		{"GET", "/api/flights/nope", http.StatusNotFound, "not found"},
		{"POST", "/api/contest", http.StatusMethodNotAllowed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, http.NoBody)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			var sb strings.Builder
			_, _ = sb.ReadFrom(resp.Body)
			assert.Contains(t, sb.String(), tt.contains)
		})
	}
}

func TestServer_Stats(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	var got StatsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, int64(120), got.Contest.Accepted)
	assert.Equal(t, int64(1), got.Components["fix"].Accepted)
	assert.Positive(t, got.Server.Goroutines)
	assert.GreaterOrEqual(t, got.Server.MemoryMaxMB, got.Server.MemoryMB)
}

func TestServer_Flights(t *testing.T) {
	ts, st, _ := newTestServer(t)
	ctx := context.Background()
	started := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	for _, id := range []string{"flight-0", "flight-1"} {
		require.NoError(t, st.SaveFlight(ctx, &store.Flight{
			ID: id, Rules: "sprint", Score: 12, Points: 40, Snapshot: []byte{1},
			StartedAt: started, UpdatedAt: started.Add(time.Hour),
		}))
	}
	require.NoError(t, st.SaveSources(ctx, "flight-0", []store.Source{
		{Cell: "881f8d4b29fffff", Lat: 47.4, Lon: 8.5, GroundAlt: 420, SeenAt: 600},
	}))

	get := func(path string, v any) int {
		t.Helper()
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		if v != nil && resp.StatusCode == http.StatusOK {
			require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
		}
		return resp.StatusCode
	}
	del := func(path string) int {
		t.Helper()
		req, _ := http.NewRequest("DELETE", ts.URL+path, http.NoBody)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	var flights []store.Flight
	require.Equal(t, http.StatusOK, get("/api/flights?limit=5", &flights))
	assert.Len(t, flights, 2)
	assert.Equal(t, http.StatusBadRequest, get("/api/flights?limit=x", nil))

	var f store.Flight
	require.Equal(t, http.StatusOK, get("/api/flights/flight-0", &f))
	assert.Equal(t, "sprint", f.Rules)

	var src []store.Source
	require.Equal(t, http.StatusOK, get("/api/flights/flight-0/sources", &src))
	require.Len(t, src, 1)
	assert.Equal(t, "881f8d4b29fffff", src[0].Cell)

	// the flight in progress is protected
	assert.Equal(t, http.StatusConflict, del("/api/flights/flight-1"))
	assert.Equal(t, http.StatusNoContent, del("/api/flights/flight-0"))
	assert.Equal(t, http.StatusNotFound, get("/api/flights/flight-0", nil))
	assert.Equal(t, http.StatusNotFound, get("/api/flights/flight-0/sources", nil))
}

func TestServer_Shutdown(t *testing.T) {
	ts, _, stopped := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/shutdown", "text/plain", http.NoBody)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown callback not called")
	}
}
