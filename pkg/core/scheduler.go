package core

import (
	"context"
	"log/slog"
	"time"

	"glidecore/pkg/computer"
	"glidecore/pkg/config"
	"glidecore/pkg/sim"
)

// TelemetrySink is an interface for consumers of the per-fix result stream.
type TelemetrySink interface {
	Update(d *computer.Derived)
	UpdateState(s sim.State)
}

// Scheduler manages the central heartbeat: it pulls a fix from the source,
// runs the calculation cycle on it and evaluates the scheduled jobs.
type Scheduler struct {
	cfg  *config.Config
	sim  sim.Client
	proc Processor
	sink TelemetrySink
	jobs []Job
}

// NewScheduler creates a new Scheduler. sink may be nil.
func NewScheduler(cfg *config.Config, simClient sim.Client, proc Processor, sink TelemetrySink) *Scheduler {
	return &Scheduler{
		cfg:  cfg,
		sim:  simClient,
		proc: proc,
		sink: sink,
		jobs: []Job{},
	}
}

// AddJob registers a job.
func (s *Scheduler) AddJob(j Job) {
	s.jobs = append(s.jobs, j)
}

// Start runs the main loop. It blocks until context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	interval := time.Duration(s.cfg.Ticker.TelemetryLoop)
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("Scheduler started", "interval", interval, "jobs", len(s.jobs))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	// 0. Get and broadcast source state
	simState := s.sim.GetState()
	if s.sink != nil {
		s.sink.UpdateState(simState)
	}

	// Skip fix processing if not active
	if simState != sim.StateActive {
		return
	}

	// 1. Fetch fix
	fix, err := s.sim.GetFix(ctx)
	if err != nil {
		slog.Debug("failed to read fix", "error", err)
		return
	}

	// 2. Calculation cycle
	d := s.proc.ProcessFix(fix)

	// 3. Broadcast to Sink (API)
	if s.sink != nil {
		s.sink.Update(&d)
	}

	// 4. Evaluate Jobs
	for _, job := range s.jobs {
		if job.ShouldFire(&d) {
			// Fire and forget
			go job.Run(ctx, &d)
		}
	}
}
