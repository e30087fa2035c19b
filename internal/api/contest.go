package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/paulmach/orb/geojson"

	"glidecore/pkg/computer"
	"glidecore/pkg/geo"
	"glidecore/pkg/olc"
)

// FlightView is the read side of the flight computer used by the API.
type FlightView interface {
	FlightID() string
	Rules() olc.Rules
	Derived() computer.Derived
	Solution(r olc.Rules) olc.Solution
	Solutions() []olc.Solution
	TrackPoints() []geo.Point
	ContestStats() olc.Stats
	Sources() []computer.Source
}

// ContestResponse lists the best solution for every rule set.
type ContestResponse struct {
	FlightID  string         `json:"flight_id"`
	Active    string         `json:"active"`
	Solutions []olc.Solution `json:"solutions"`
}

type ContestHandler struct {
	view FlightView
}

func NewContestHandler(view FlightView) *ContestHandler {
	return &ContestHandler{view: view}
}

// HandleContest returns all solutions.
func (h *ContestHandler) HandleContest(w http.ResponseWriter, r *http.Request) {
	resp := ContestResponse{
		FlightID:  h.view.FlightID(),
		Active:    h.view.Rules().String(),
		Solutions: h.view.Solutions(),
	}
	writeJSON(w, resp)
}

// HandleRules returns the solution for the rule set named in the path.
func (h *ContestHandler) HandleRules(w http.ResponseWriter, r *http.Request) {
	rules, err := olc.ParseRules(r.PathValue("rules"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, h.view.Solution(rules))
}

// HandleGeoJSON returns the flown track and the active solution as a
// feature collection. ?rules= selects another rule set.
func (h *ContestHandler) HandleGeoJSON(w http.ResponseWriter, r *http.Request) {
	rules := h.view.Rules()
	if q := r.URL.Query().Get("rules"); q != "" {
		parsed, err := olc.ParseRules(q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rules = parsed
	}
	fc := contestFeatures(h.view.TrackPoints(), h.view.Solution(rules))

	w.Header().Set("Content-Type", "application/geo+json")
	if err := json.NewEncoder(w).Encode(fc); err != nil {
		slog.Error("Failed to encode contest geojson", "error", err)
	}
}

func contestFeatures(track []geo.Point, sol olc.Solution) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if len(track) > 1 {
		fc.Append(geo.PathFeature(track, map[string]any{"kind": "track"}))
	}
	if len(sol.Points) > 1 {
		fc.Append(geo.PathFeature(sol.Points, map[string]any{
			"kind":       "solution",
			"rules":      sol.Rules.String(),
			"score":      sol.Score,
			"distance_m": sol.Distance,
			"finished":   sol.Finished,
		}))
		for i, p := range sol.Points {
			fc.Append(geo.PointFeature(p, map[string]any{"kind": "turnpoint", "index": i}))
		}
	}
	if !sol.Finished && !sol.Projected.IsZero() {
		fc.Append(geo.PointFeature(sol.Projected, map[string]any{"kind": "projected"}))
	}
	if len(track) > 0 {
		b := geo.Bound(track)
		fc.BBox = geojson.NewBBox(b)
	}
	return fc
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
