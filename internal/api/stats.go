package api

import (
	"net/http"
	"runtime"
	"sync"
	"time"

	"glidecore/pkg/olc"
	"glidecore/pkg/tracker"
)

// ServerStats describes this process.
type ServerStats struct {
	MemoryMB    uint64  `json:"memory_mb"`
	MemoryMaxMB uint64  `json:"memory_max_mb"`
	Goroutines  int     `json:"goroutines"`
	UptimeSec   float64 `json:"uptime_s"`
	Subscribers int     `json:"subscribers"`
}

type StatsResponse struct {
	Server     ServerStats                       `json:"server"`
	Contest    olc.Stats                         `json:"contest"`
	Components map[string]tracker.ComponentStats `json:"components"`
}

type StatsHandler struct {
	tracker *tracker.Tracker
	view    FlightView
	tel     *TelemetryHandler
	started time.Time

	mu     sync.Mutex
	maxMem uint64
}

func NewStatsHandler(t *tracker.Tracker, view FlightView, tel *TelemetryHandler) *StatsHandler {
	return &StatsHandler{tracker: t, view: view, tel: tel, started: time.Now()}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	h.mu.Lock()
	if ms.Sys > h.maxMem {
		h.maxMem = ms.Sys
	}
	maxMem := h.maxMem
	h.mu.Unlock()

	resp := StatsResponse{
		Server: ServerStats{
			MemoryMB:    bToMb(ms.Sys),
			MemoryMaxMB: bToMb(maxMem),
			Goroutines:  runtime.NumGoroutine(),
			UptimeSec:   time.Since(h.started).Seconds(),
		},
		Contest: h.view.ContestStats(),
	}
	if h.tracker != nil {
		resp.Components = h.tracker.Snapshot()
	}
	if h.tel != nil {
		resp.Server.Subscribers = h.tel.Subscribers()
	}
	if resp.Components == nil {
		resp.Components = map[string]tracker.ComponentStats{}
	}
	writeJSON(w, resp)
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
