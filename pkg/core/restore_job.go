package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"glidecore/pkg/computer"
	"glidecore/pkg/config"
	"glidecore/pkg/store"
)

// ResumeFlight hands the last active flight to comp when resuming is enabled.
// It runs once, before the fix source starts, so the source can carry on
// from the returned state instead of replaying the day from its beginning.
func ResumeFlight(ctx context.Context, st FlightStateStore, prov config.Provider, comp FlightComputer) (computer.FlightState, bool) {
	if !prov.ResumeEnabled(ctx) {
		return computer.FlightState{}, false
	}
	fs, err := RestoreFlight(ctx, st, comp)
	switch {
	case errors.Is(err, store.ErrNotFound):
		slog.Debug("FlightRestoration: nothing to resume")
		return computer.FlightState{}, false
	case err != nil:
		slog.Warn("FlightRestoration: discarding saved flight", "error", err)
		return computer.FlightState{}, false
	}
	slog.Info("FlightRestoration: resumed flight", "flight", fs.ID, "time", fs.LastTime, "flying", fs.Flying)
	return fs, true
}

// RestoreFlight loads the flight recorded as active and hands it to comp.
// It returns store.ErrNotFound when there is nothing to resume.
func RestoreFlight(ctx context.Context, st FlightStateStore, comp FlightComputer) (computer.FlightState, error) {
	id, ok := st.GetState(ctx, config.KeyActiveFlight)
	if !ok || id == "" {
		return computer.FlightState{}, store.ErrNotFound
	}
	f, err := st.GetFlight(ctx, id)
	if err != nil {
		return computer.FlightState{}, fmt.Errorf("load flight %s: %w", id, err)
	}

	var fs computer.FlightState
	if err := store.Decode(f.Snapshot, &fs); err != nil {
		return computer.FlightState{}, fmt.Errorf("decode flight %s: %w", id, err)
	}
	if err := comp.Restore(fs); err != nil {
		return computer.FlightState{}, err
	}
	return fs, nil
}
