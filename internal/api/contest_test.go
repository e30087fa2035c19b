package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glidecore/pkg/geo"
	"glidecore/pkg/olc"
)

func TestContestHandler_HandleContest(t *testing.T) {
	h := NewContestHandler(sampleView())
	w := httptest.NewRecorder()
	h.HandleContest(w, httptest.NewRequest("GET", "/api/contest", http.NoBody))

	require.Equal(t, http.StatusOK, w.Code)
	var got ContestResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "flight-1", got.FlightID)
	assert.Equal(t, "sprint", got.Active)
	require.Len(t, got.Solutions, 3)
	assert.Equal(t, olc.Sprint, got.Solutions[0].Rules)
	assert.InDelta(t, 38.9, got.Solutions[0].Score, 1e-9)
	assert.True(t, got.Solutions[1].Finished)
	assert.False(t, got.Solutions[2].Valid)
}

func TestContestHandler_HandleRules(t *testing.T) {
	mux := http.NewServeMux()
	h := NewContestHandler(sampleView())
	mux.HandleFunc("GET /api/contest/{rules}", h.HandleRules)

	tests := []struct {
		path      string
		wantCode  int
		wantRules olc.Rules
	}{
		{"/api/contest/triangle", http.StatusOK, olc.Triangle},
		{"/api/contest/SPRINT", http.StatusOK, olc.Sprint},
		{"/api/contest/free", http.StatusNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest("GET", tt.path, http.NoBody))
			require.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode != http.StatusOK {
				return
			}
			var sol olc.Solution
			require.NoError(t, json.NewDecoder(w.Body).Decode(&sol))
			assert.Equal(t, tt.wantRules, sol.Rules)
		})
	}
}

func TestContestHandler_HandleGeoJSON(t *testing.T) {
	h := NewContestHandler(sampleView())

	tests := []struct {
		name          string
		query         string
		wantCode      int
		wantTurns     int
		wantProjected bool
	}{
		{"Active sprint", "", http.StatusOK, 3, true},
		{"Finished triangle", "?rules=triangle", http.StatusOK, 4, false},
		{"Empty classic", "?rules=classic", http.StatusOK, 0, false},
		{"Unknown", "?rules=bogus", http.StatusBadRequest, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.HandleGeoJSON(w, httptest.NewRequest("GET", "/api/contest/geojson"+tt.query, http.NoBody))
			require.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode != http.StatusOK {
				return
			}
			assert.Equal(t, "application/geo+json", w.Header().Get("Content-Type"))

			fc, err := geojson.UnmarshalFeatureCollection(w.Body.Bytes())
			require.NoError(t, err)

			kinds := map[string]int{}
			for _, f := range fc.Features {
				kinds[f.Properties.MustString("kind")]++
			}
			assert.Equal(t, 1, kinds["track"])
			assert.Equal(t, tt.wantTurns, kinds["turnpoint"])
			assert.Equal(t, tt.wantProjected, kinds["projected"] == 1)
			assert.Len(t, fc.BBox, 4)
		})
	}
}

func TestContestFeatures_Empty(t *testing.T) {
	fc := contestFeatures(nil, olc.Solution{})
	assert.Empty(t, fc.Features)
	assert.Nil(t, fc.BBox)

	// a lone fix has no path but still bounds the map
	fc = contestFeatures([]geo.Point{{Lat: 47, Lon: 8}}, olc.Solution{})
	assert.Empty(t, fc.Features)
	assert.Len(t, fc.BBox, 4)
}
