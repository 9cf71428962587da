package insightjob

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zaydhassan/AspireOn/internal/filter"
	"github.com/zaydhassan/AspireOn/internal/model"
)

// Options tunes a Job. The zero value refreshes every discovered industry
// one at a time.
type Options struct {
	// Concurrency bounds how many industries are refreshed at once. Values
	// below 1 mean 1.
	Concurrency int
	// StaleOnly skips industries whose stored insight is not yet due.
	StaleOnly bool
	// Filter drops industries after discovery. Nil keeps all.
	Filter *filter.IndustryFilter
	// Industries, when non-empty, replaces discovery.
	Industries []string
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Job regenerates the insight record of every industry referenced by a user
// profile. A failure in one industry never affects the others.
type Job struct {
	source    model.IndustrySource
	generator model.InsightGenerator
	store     model.InsightStore
	notifier  model.RunNotifier
	opts      Options
	logger    *slog.Logger
}

// NewJob creates a job wired with all its dependencies. notifier may be nil.
func NewJob(
	source model.IndustrySource,
	generator model.InsightGenerator,
	store model.InsightStore,
	notifier model.RunNotifier,
	opts Options,
	logger *slog.Logger,
) *Job {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Job{
		source:    source,
		generator: generator,
		store:     store,
		notifier:  notifier,
		opts:      opts,
		logger:    logger,
	}
}

// Run executes one refresh pass. The only error it returns is a discovery
// failure; per-industry failures are reported in the RunReport outcomes.
// Once ctx is done no further industries are started.
func (j *Job) Run(ctx context.Context) (model.RunReport, error) {
	report := model.RunReport{
		RunID:     uuid.New(),
		StartedAt: j.opts.Clock(),
	}
	logger := j.logger.With("run_id", report.RunID.String())

	industries, err := j.discover(ctx)
	if err != nil {
		report.FinishedAt = j.opts.Clock()
		logger.Error("industry discovery failed", "error", err)
		return report, fmt.Errorf("discovering industries: %w", err)
	}

	industries = j.selectIndustries(ctx, industries, logger)
	if len(industries) == 0 {
		report.FinishedAt = j.opts.Clock()
		logger.Info("no industries to refresh")
		return report, nil
	}

	logger.Info("refreshing industry insights",
		"industries", len(industries),
		"concurrency", j.opts.Concurrency,
	)

	slots := make([]*model.JobRunOutcome, len(industries))
	var g errgroup.Group
	g.SetLimit(j.opts.Concurrency)
	for i, industry := range industries {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// A slot may free up after cancellation; do not start new work then.
			if ctx.Err() != nil {
				return nil
			}
			outcome := j.refresh(ctx, industry, logger)
			slots[i] = &outcome
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range slots {
		if o != nil {
			report.Outcomes = append(report.Outcomes, *o)
		}
	}
	report.FinishedAt = j.opts.Clock()

	failed := report.Failed()
	logger.Info("insight refresh finished",
		"industries", len(industries),
		"succeeded", report.Succeeded(),
		"failed", len(failed),
		"not_started", len(industries)-len(report.Outcomes),
		"duration", report.FinishedAt.Sub(report.StartedAt).String(),
	)

	if j.notifier != nil {
		if err := j.notifier.NotifyRun(report); err != nil {
			logger.Warn("run notification failed", "error", err)
		}
	}

	return report, nil
}

func (j *Job) discover(ctx context.Context) ([]string, error) {
	if len(j.opts.Industries) > 0 {
		return j.opts.Industries, nil
	}
	return j.source.Industries(ctx)
}

// selectIndustries applies the filter and the stale-only rule, keeping order.
func (j *Job) selectIndustries(ctx context.Context, industries []string, logger *slog.Logger) []string {
	if j.opts.Filter != nil {
		industries = j.opts.Filter.Apply(industries)
	}
	if !j.opts.StaleOnly {
		return industries
	}

	now := j.opts.Clock()
	due := make([]string, 0, len(industries))
	for _, industry := range industries {
		existing, err := j.store.Get(ctx, industry)
		switch {
		case errors.Is(err, model.ErrInsightNotFound):
			due = append(due, industry)
		case err != nil:
			logger.Warn("could not read stored insight, refreshing anyway", "industry", industry, "error", err)
			due = append(due, industry)
		case existing.IsStale(now):
			due = append(due, industry)
		default:
			logger.Debug("insight still fresh, skipping", "industry", industry, "next_update", existing.NextUpdate)
		}
	}
	return due
}

// refresh runs the unit of work for one industry and classifies its result.
func (j *Job) refresh(ctx context.Context, industry string, logger *slog.Logger) (outcome model.JobRunOutcome) {
	start := time.Now()
	outcome.Industry = industry

	defer func() {
		if r := recover(); r != nil {
			outcome.Err = fmt.Errorf("refreshing %s: panic: %v", industry, r)
			outcome.Success = false
		}
		outcome.Kind = model.ClassifyRun(ctx, outcome.Err)
		outcome.Duration = time.Since(start)

		if outcome.Err != nil {
			logger.Error("industry refresh failed",
				"industry", industry,
				"kind", string(outcome.Kind),
				"error", outcome.Err,
			)
			return
		}
		logger.Info("industry refreshed",
			"industry", industry,
			"duration", outcome.Duration.String(),
		)
	}()

	outcome.Err = j.refreshOne(ctx, industry)
	outcome.Success = outcome.Err == nil
	return outcome
}

// refreshOne generates, validates and upserts the insight for industry.
// Nothing is written when generation fails.
func (j *Job) refreshOne(ctx context.Context, industry string) error {
	payload, err := j.generator.Generate(ctx, industry)
	if err != nil {
		return fmt.Errorf("generating %s: %w", industry, err)
	}

	insight := model.NewIndustryInsight(industry, payload, j.opts.Clock())
	if err := j.store.Upsert(ctx, insight); err != nil {
		if !errors.Is(err, model.ErrStoreWrite) && !errors.Is(err, model.ErrWriteConflict) {
			err = fmt.Errorf("%w: %w", model.ErrStoreWrite, err)
		}
		return fmt.Errorf("storing %s: %w", industry, err)
	}
	return nil
}
