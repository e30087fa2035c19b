package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"glidecore/pkg/computer"
)

// FlightSaver persists the flight on demand.
type FlightSaver interface {
	SaveNow(ctx context.Context) (bool, error)
}

// LandingJob detects when the glider lands, logs a flight summary and saves
// the final state of the flight.
type LandingJob struct {
	BaseJob
	saver       FlightSaver
	wasAirborne bool
	cooldown    time.Time
}

// NewLandingJob creates a new LandingJob.
func NewLandingJob(saver FlightSaver) *LandingJob {
	return &LandingJob{
		BaseJob: NewBaseJob("LandingJob"),
		saver:   saver,
	}
}

func (j *LandingJob) ShouldFire(d *computer.Derived) bool {
	// If recently fired, wait
	if time.Now().Before(j.cooldown) {
		return false
	}

	if d.Flying {
		if !j.wasAirborne {
			slog.Debug("LandingJob: Glider is airborne")
			j.wasAirborne = true
		}
		return false
	}

	// Just sitting on the field
	return j.wasAirborne
}

func (j *LandingJob) Run(ctx context.Context, d *computer.Derived) {
	if !j.TryLock() {
		return
	}
	defer j.Unlock()

	c := d.Contest
	slog.Info("LandingJob: Landing detected",
		"flight", d.FlightID,
		"rules", c.Rules,
		"score", fmt.Sprintf("%.1f", c.Score),
		"distance_km", fmt.Sprintf("%.1f", c.Distance/1000),
		"finished", c.Finished,
	)

	j.wasAirborne = false
	j.cooldown = time.Now().Add(time.Minute)
	if j.saver == nil {
		return
	}
	if _, err := j.saver.SaveNow(ctx); err != nil {
		slog.Error("LandingJob: Failed to save flight", "error", err)
	}
}
