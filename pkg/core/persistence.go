package core

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"glidecore/pkg/computer"
	"glidecore/pkg/config"
	"glidecore/pkg/store"
)

// FlightStateStore is the part of the store the resume-flight jobs use.
type FlightStateStore interface {
	store.StateStore
	store.FlightStore
	store.SourceStore
}

// FlightPersistenceJob manages the periodic saving of the flight so it can
// be resumed after a restart.
type FlightPersistenceJob struct {
	st   FlightStateStore
	prov config.Provider
	comp FlightComputer

	mu             sync.Mutex
	lastSavedState []byte
}

// NewFlightPersistenceJob creates a new persistence job.
func NewFlightPersistenceJob(st FlightStateStore, prov config.Provider, comp FlightComputer) *FlightPersistenceJob {
	return &FlightPersistenceJob{
		st:   st,
		prov: prov,
		comp: comp,
	}
}

// Start begins the persistence loop.
func (j *FlightPersistenceJob) Start(ctx context.Context) {
	interval := time.Duration(j.prov.AppConfig().Resume.Interval)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)

	slog.Info("Persistence: Flight persistence loop started", "interval", interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !j.prov.ResumeEnabled(ctx) {
					continue
				}
				if _, err := j.SaveNow(ctx); err != nil {
					slog.Error("Persistence: Failed to save flight", "error", err)
				}
			}
		}
	}()
}

// SaveNow writes the current flight unless it is empty or unchanged since
// the last save. It reports whether anything was written.
func (j *FlightPersistenceJob) SaveNow(ctx context.Context) (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	// 1. Snapshot
	st := j.comp.Snapshot()
	if len(st.OLC.Points) == 0 {
		return false, nil
	}

	// 2. Serialize
	data, err := store.Encode(st)
	if err != nil {
		return false, fmt.Errorf("encode flight %s: %w", st.ID, err)
	}

	// 3. Dirty Check
	if bytes.Equal(data, j.lastSavedState) {
		return false, nil
	}

	// 4. Save
	sol := j.comp.Solution(st.Rules)
	f := &store.Flight{
		ID:        st.ID,
		Rules:     st.Rules.String(),
		Score:     sol.Score,
		Distance:  sol.Distance,
		Points:    len(st.OLC.Points),
		Snapshot:  data,
		StartedAt: st.Started,
		UpdatedAt: time.Now(),
	}
	if err := j.st.SaveFlight(ctx, f); err != nil {
		return false, err
	}
	if err := j.st.SaveSources(ctx, st.ID, toStoreSources(st.Sources)); err != nil {
		return false, err
	}
	if err := j.st.SetState(ctx, config.KeyActiveFlight, st.ID); err != nil {
		return false, err
	}

	j.lastSavedState = data
	slog.Debug("Persistence: Flight saved", "flight", st.ID, "size", len(data), "points", f.Points)
	return true, nil
}

func toStoreSources(src []computer.Source) []store.Source {
	out := make([]store.Source, len(src))
	for i, s := range src {
		out[i] = store.Source{
			Cell:      s.Cell,
			Lat:       s.Location.Lat,
			Lon:       s.Location.Lon,
			GroundAlt: s.GroundAlt,
			SeenAt:    s.Time,
		}
	}
	return out
}
