package core

import (
	"context"
	"log/slog"
	"time"

	"glidecore/pkg/computer"
	"glidecore/pkg/config"
)

// FlightPruner deletes persisted flights not updated for a while.
type FlightPruner interface {
	PruneFlights(olderThan time.Duration) (int64, error)
}

// EvictionJob periodically removes old flights from the database. It only
// runs on the ground.
type EvictionJob struct {
	BaseJob
	prov   config.Provider
	pruner FlightPruner
	every  time.Duration

	lastRunTime time.Time
}

func NewEvictionJob(prov config.Provider, pruner FlightPruner) *EvictionJob {
	return &EvictionJob{
		BaseJob: NewBaseJob("Eviction"),
		prov:    prov,
		pruner:  pruner,
		every:   time.Hour,
	}
}

func (j *EvictionJob) ShouldFire(d *computer.Derived) bool {
	if d != nil && d.Flying {
		return false
	}
	if j.Running() {
		return false
	}
	return time.Since(j.lastRunTime) >= j.every
}

func (j *EvictionJob) Run(ctx context.Context, d *computer.Derived) {
	if !j.TryLock() {
		return
	}
	defer j.Unlock()

	j.lastRunTime = time.Now()

	keep := time.Duration(j.prov.AppConfig().Resume.Retention)
	if keep <= 0 {
		return
	}
	start := time.Now()
	n, err := j.pruner.PruneFlights(keep)
	if err != nil {
		slog.Error("Eviction: failed to prune flights", "error", err)
		return
	}
	if n > 0 {
		slog.Info("Eviction Job Completed", "flights", n, "retention", keep, "duration", time.Since(start))
	}
}
