package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"CommonsSim/internal/model"
	"CommonsSim/internal/notifier"
	"CommonsSim/internal/recorder"
	"CommonsSim/internal/rng"
	"CommonsSim/internal/score"
	"CommonsSim/internal/simulation"
	"CommonsSim/internal/sweep"

	"github.com/robfig/cron/v3"
)

// Scheduler runs parameter sweeps on a cron schedule.
type Scheduler struct {
	Cron     *cron.Cron
	Params   model.Params
	Runs     int
	Sweeps   *sweep.Manager
	Notifier notifier.Notifier
	Recorder recorder.Recorder
	Logger   *slog.Logger
	Ctx      context.Context

	// running serializes sweeps from cron and RunNow.
	running sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, params model.Params, runs int, sm *sweep.Manager, n notifier.Notifier, rec recorder.Recorder, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Params:   params,
		Runs:     runs,
		Sweeps:   sm,
		Notifier: n,
		Recorder: rec,
		Logger:   logger,
		Ctx:      ctx,
	}
}

// Register adds the sweep task under a cron expression with seconds.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, func() { s.sweepTask() }); err != nil {
		return fmt.Errorf("register sweep task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running sweep to finish,
// including one started by RunNow.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.running.Lock()
	s.running.Unlock()
	s.Logger.Info("scheduler stopped")
}

// RunNow executes one sweep immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() []notifier.RunSummary {
	return s.sweepTask()
}

func (s *Scheduler) sweepTask() []notifier.RunSummary {
	s.running.Lock()
	defer s.running.Unlock()

	seeds := s.Sweeps.NextSeeds(s.Runs)
	sweepNo := s.Sweeps.GetState().Sweeps
	s.Logger.Info("running sweep", "sweep", sweepNo, "runs", len(seeds))

	var runs []notifier.RunSummary
	for _, seed := range seeds {
		if err := s.Ctx.Err(); err != nil {
			s.Logger.Warn("sweep interrupted", "sweep", sweepNo, "err", err)
			break
		}
		summary, err := s.runOne(seed)
		if err != nil {
			s.Logger.Error("sweep run failed", "seed", seed, "err", err)
			continue
		}
		runs = append(runs, summary)
	}

	s.trySend(notifier.FormatSweepReport(sweepNo, runs))
	s.Logger.Info("sweep finished", "sweep", sweepNo, "completed", len(runs))
	return runs
}

func (s *Scheduler) runOne(seed uint64) (notifier.RunSummary, error) {
	params := s.Params
	params.RandomSeed = seed
	res, err := simulation.Run(params, rng.New(seed), simulation.Options{Logger: s.Logger})
	if err != nil {
		return notifier.RunSummary{}, err
	}
	sc := score.Evaluate(score.FromRun(res), score.DefaultSigma)

	if err := recorder.Save(s.Recorder, res, sc); err != nil {
		s.Logger.Error("record run", "run_id", res.RunID, "err", err)
	}
	return notifier.RunSummary{Seed: seed, Result: res, Score: sc}, nil
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Logger.Error("send notification", "err", err)
	}
}
