package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"glidecore/pkg/version"
)

// Handlers groups everything NewServer mounts. Flights may be nil when no
// store is configured.
type Handlers struct {
	Telemetry *TelemetryHandler
	Contest   *ContestHandler
	Thermal   *ThermalHandler
	Config    *ConfigHandler
	Stats     *StatsHandler
	Flights   *FlightsHandler
}

// NewServer creates and configures the HTTP server.
// shutdown is called asynchronously after POST /api/shutdown has been answered.
func NewServer(addr string, h Handlers, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health & version
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)

	// 2. Live state
	mux.HandleFunc("GET /api/telemetry", h.Telemetry.handleTelemetry)
	mux.HandleFunc("GET /api/stream", h.Telemetry.handleStream)

	// 3. Contest
	mux.HandleFunc("GET /api/contest", h.Contest.HandleContest)
	mux.HandleFunc("GET /api/contest/geojson", h.Contest.HandleGeoJSON)
	mux.HandleFunc("GET /api/contest/{rules}", h.Contest.HandleRules)

	// 4. Thermals
	mux.HandleFunc("GET /api/thermal", h.Thermal.HandleThermal)
	mux.HandleFunc("GET /api/thermal/sources", h.Thermal.HandleSources)
	mux.HandleFunc("GET /api/thermal/sources/geojson", h.Thermal.HandleSourcesGeoJSON)

	// 5. Config, stats & logs
	mux.HandleFunc("/api/config", h.Config.HandleConfig)
	mux.Handle("GET /api/stats", h.Stats)
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)

	// 6. Stored flights
	if h.Flights != nil {
		mux.HandleFunc("GET /api/flights", h.Flights.HandleList)
		mux.HandleFunc("GET /api/flights/{id}", h.Flights.HandleGet)
		mux.HandleFunc("GET /api/flights/{id}/sources", h.Flights.HandleSources)
		mux.HandleFunc("DELETE /api/flights/{id}", h.Flights.HandleDelete)
	}

	// 7. Shutdown
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Call shutdown in a goroutine to allow response to flush
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	// The stream endpoint is long-lived, so there is no write timeout here;
	// the stream sets its own per-message deadline.
	return &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
