package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/zaydhassan/AspireOn/internal/model"
)

// DefaultSpec fires weekly at Sunday midnight.
const DefaultSpec = "0 0 * * 0"

// Runner is one refresh pass; insightjob.Job satisfies it.
type Runner interface {
	Run(ctx context.Context) (model.RunReport, error)
}

// Scheduler triggers the runner on a cron spec. Overlapping triggers are
// skipped while a run is still in flight.
type Scheduler struct {
	runner     Runner
	spec       string
	runOnStart bool
	logger     *slog.Logger
	wg         sync.WaitGroup
}

// NewScheduler validates spec (standard 5-field cron or a descriptor such
// as "@weekly") and returns a scheduler for runner.
func NewScheduler(runner Runner, spec string, runOnStart bool, logger *slog.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return &Scheduler{
		runner:     runner,
		spec:       spec,
		runOnStart: runOnStart,
		logger:     logger,
	}, nil
}

// Run starts the cron loop and blocks until ctx is cancelled. It then waits
// for an in-flight run to finish and returns nil.
func (s *Scheduler) Run(ctx context.Context) error {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn))
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	id, err := c.AddFunc(s.spec, func() { s.runOnce(ctx) })
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	c.Start()

	s.logger.Info("starting scheduler",
		"schedule", s.spec,
		"next_run", c.Entry(id).Next,
	)

	if s.runOnStart {
		// WrappedJob carries the skip-if-running chain, so a cron tick
		// cannot overlap this run.
		job := c.Entry(id).WrappedJob
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			job.Run()
		}()
	}

	<-ctx.Done()
	s.logger.Info("shutting down scheduler")
	// Stop waits only for runs cron started itself.
	<-c.Stop().Done()
	s.wg.Wait()
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	report, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error("insight run failed", "run_id", report.RunID.String(), "error", err)
	}
}
