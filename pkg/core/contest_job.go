package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"glidecore/pkg/computer"
	"glidecore/pkg/config"
	"glidecore/pkg/olc"
)

// ContestJob runs the contest optimizer on its own cadence, off the fix
// loop. It also picks up rule and handicap changes made at runtime.
type ContestJob struct {
	BaseJob
	prov     config.Provider
	comp     FlightComputer
	interval time.Duration

	lastRun      time.Time
	handicap     float64
	badRules     string
	improvements int
}

func NewContestJob(prov config.Provider, comp FlightComputer) *ContestJob {
	interval := time.Duration(prov.AppConfig().Ticker.ContestLoop)
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &ContestJob{
		BaseJob:  NewBaseJob("Contest"),
		prov:     prov,
		comp:     comp,
		interval: interval,
	}
}

func (j *ContestJob) ShouldFire(d *computer.Derived) bool {
	if j.Running() {
		return false
	}
	return time.Since(j.lastRun) >= j.interval
}

func (j *ContestJob) Run(ctx context.Context, d *computer.Derived) {
	if !j.TryLock() {
		return
	}
	defer j.Unlock()

	j.lastRun = time.Now()
	j.syncSettings(ctx)

	if !j.comp.Optimize() {
		return
	}
	j.improvements++
	r := j.comp.Rules()
	sol := j.comp.Solution(r)
	slog.Info("Contest result improved",
		"rules", r,
		"score", fmt.Sprintf("%.1f", sol.Score),
		"distance_km", fmt.Sprintf("%.1f", sol.Distance/1000),
		"finished", sol.Finished,
		"flight", j.comp.FlightID(),
	)
}

func (j *ContestJob) syncSettings(ctx context.Context) {
	name := j.prov.Rules(ctx)
	r, err := olc.ParseRules(name)
	switch {
	case err != nil:
		if name != j.badRules {
			slog.Warn("ContestJob: ignoring unknown rules", "rules", name)
			j.badRules = name
		}
	case r != j.comp.Rules():
		j.comp.SetRules(r)
	}

	if h := j.prov.Handicap(ctx); h != j.handicap {
		j.comp.SetHandicap(h)
		j.handicap = h
	}
}
