package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zaydhassan/AspireOn/internal/filter"
	"github.com/zaydhassan/AspireOn/internal/insightjob"
	"github.com/zaydhassan/AspireOn/internal/model"
	"github.com/zaydhassan/AspireOn/internal/notifier"
	"github.com/zaydhassan/AspireOn/internal/store"
)

var (
	refreshDryRun     bool
	refreshStaleOnly  bool
	refreshIndustries []string
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Run one refresh pass and exit",
	Long: "One-shot run of the insight job. --dry-run generates insights without writing them; " +
		"--industry replaces discovery with the given industries.",
	RunE: runRefresh,
}

func init() {
	refreshCmd.Flags().BoolVar(&refreshDryRun, "dry-run", false, "generate insights but do not store them or send notifications")
	refreshCmd.Flags().BoolVar(&refreshStaleOnly, "stale-only", false, "skip industries whose insight is not yet due")
	refreshCmd.Flags().StringSliceVar(&refreshIndustries, "industry", nil, "refresh only these industries (repeatable)")
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := setupStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer func() { d.close() }()

	var (
		insights model.InsightStore = d.insights
		n        model.RunNotifier
	)
	if refreshDryRun {
		logger.Info("dry-run mode: no insights will be written")
		insights = store.NewNopStore(d.insights)
		n = notifier.NewLogNotifier(logger)
	} else {
		n, err = setupNotifier(ctx, cfg, d, logger)
		if err != nil {
			logger.Error("failed to set up notifier", "error", err)
			os.Exit(1)
		}
	}

	job := insightjob.NewJob(d.backend, setupGenerator(cfg, logger), insights, n, insightjob.Options{
		Concurrency: cfg.Job.Concurrency,
		StaleOnly:   refreshStaleOnly || cfg.Job.StaleOnly,
		Filter:      filter.NewIndustryFilter(cfg.Job.Include, cfg.Job.Exclude),
		Industries:  refreshIndustries,
	}, logger)

	report, err := job.Run(ctx)
	if err != nil {
		logger.Error("refresh failed", "error", err)
		os.Exit(1)
	}

	printReport(report)
	return nil
}

func printReport(r model.RunReport) {
	if len(r.Outcomes) == 0 {
		fmt.Println("No industries refreshed.")
		return
	}

	fmt.Printf("\n%-40s %-8s %s\n", "Industry", "Result", "Detail")
	fmt.Println(strings.Repeat("─", 72))
	for _, o := range r.Outcomes {
		result, detail := "ok", o.Duration.Round(time.Millisecond).String()
		if !o.Success {
			result, detail = "FAILED", string(o.Kind)
		}
		fmt.Printf("%-40s %-8s %s\n", o.Industry, result, detail)
	}
	fmt.Printf("\nTotal: %d industries (%d succeeded, %d failed)\n",
		len(r.Outcomes), r.Succeeded(), len(r.Failed()))
}
