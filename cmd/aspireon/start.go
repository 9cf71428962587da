package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zaydhassan/AspireOn/internal/filter"
	"github.com/zaydhassan/AspireOn/internal/insightjob"
	"github.com/zaydhassan/AspireOn/internal/scheduler"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the refresh daemon",
	Long:  "Start the cron scheduler that refreshes every industry insight; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"schedule", cfg.Job.Schedule,
		"run_on_start", cfg.Job.RunOnStart,
		"concurrency", cfg.Job.Concurrency,
		"store", cfg.Store.Driver,
		"include", len(cfg.Job.Include),
		"exclude", len(cfg.Job.Exclude),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := setupStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer func() { d.close() }()

	n, err := setupNotifier(ctx, cfg, d, logger)
	if err != nil {
		logger.Error("failed to set up notifier", "error", err)
		os.Exit(1)
	}

	job := insightjob.NewJob(d.backend, setupGenerator(cfg, logger), d.insights, n, insightjob.Options{
		Concurrency: cfg.Job.Concurrency,
		StaleOnly:   cfg.Job.StaleOnly,
		Filter:      filter.NewIndustryFilter(cfg.Job.Include, cfg.Job.Exclude),
	}, logger)

	sched, err := scheduler.NewScheduler(job, cfg.Job.Schedule, cfg.Job.RunOnStart, logger)
	if err != nil {
		logger.Error("invalid schedule", "error", err)
		os.Exit(1)
	}
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
