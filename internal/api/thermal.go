package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/paulmach/orb/geojson"

	"glidecore/pkg/computer"
	"glidecore/pkg/sim"
	"glidecore/pkg/thermal"
)

// ThermalResponse is the locator output plus the last completed climb.
type ThermalResponse struct {
	Circling    bool             `json:"circling"`
	Estimate    thermal.Estimate `json:"estimate"`
	Available   bool             `json:"available"`
	LastThermal *sim.Thermal     `json:"last_thermal,omitempty"`
}

type ThermalHandler struct {
	view FlightView
}

func NewThermalHandler(view FlightView) *ThermalHandler {
	return &ThermalHandler{view: view}
}

func (h *ThermalHandler) HandleThermal(w http.ResponseWriter, r *http.Request) {
	d := h.view.Derived()
	writeJSON(w, ThermalResponse{
		Circling:    d.Circling,
		Estimate:    d.Thermal,
		Available:   d.Thermal.Available(),
		LastThermal: d.LastThermal,
	})
}

// HandleSources lists the thermal sources of the current flight, oldest first.
func (h *ThermalHandler) HandleSources(w http.ResponseWriter, r *http.Request) {
	src := h.view.Sources()
	if src == nil {
		src = []computer.Source{}
	}
	writeJSON(w, src)
}

// HandleSourcesGeoJSON returns the sources as point features.
func (h *ThermalHandler) HandleSourcesGeoJSON(w http.ResponseWriter, r *http.Request) {
	fc := geojson.NewFeatureCollection()
	for _, s := range h.view.Sources() {
		fc.Append(sourceFeature(s))
	}
	w.Header().Set("Content-Type", "application/geo+json")
	if err := json.NewEncoder(w).Encode(fc); err != nil {
		slog.Error("Failed to encode sources geojson", "error", err)
	}
}

func sourceFeature(s computer.Source) *geojson.Feature {
	f := geojson.NewFeature(s.Location.OrbPoint())
	f.ID = s.Cell
	f.Properties["ground_alt"] = s.GroundAlt
	f.Properties["time"] = s.Time
	return f
}
