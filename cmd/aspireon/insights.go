package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zaydhassan/AspireOn/internal/browse"
	"github.com/zaydhassan/AspireOn/internal/fetch"
	"github.com/zaydhassan/AspireOn/internal/model"
)

const (
	loadTimeout = 30 * time.Second
	showWidth   = 80
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Inspect stored industry insights",
}

var insightsShowCmd = &cobra.Command{
	Use:   "show [industry]",
	Short: "Print one industry's insight",
	Long:  "Prints the stored insight for an industry. Without an argument an interactive picker lists every stored industry.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInsightsShow,
}

var insightsBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse all insights interactively (TUI)",
	RunE:  runInsightsBrowse,
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	insightsCmd.AddCommand(insightsShowCmd, insightsBrowseCmd)
}

// silentLogger keeps log lines from corrupting TUI output.
func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runInsightsShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	d, err := setupStores(ctx, cfg, silentLogger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer d.close()

	var industry string
	if len(args) == 1 {
		industry = args[0]
	} else {
		all, err := d.insights.List(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to list insights: %v\n", err)
			os.Exit(1)
		}
		if len(all) == 0 {
			fmt.Println("No insights stored yet. Run `aspireon refresh` first.")
			return nil
		}
		names := make([]string, len(all))
		for i, in := range all {
			names[i] = in.Industry
		}
		choice, err := browse.RunPicker("Industry insights · Select an industry", names)
		if err != nil {
			return err
		}
		if choice < 0 {
			return nil
		}
		industry = names[choice]
	}

	in, err := d.insights.Get(ctx, industry)
	if errors.Is(err, model.ErrInsightNotFound) {
		fmt.Fprintf(os.Stderr, "no insight stored for %q\n", industry)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read insight: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(browse.RenderInsight(*in, showWidth, time.Now()))
	return nil
}

func runInsightsBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	d, err := setupStores(ctx, cfg, silentLogger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer d.close()

	tracker := fetch.New(func(ctx context.Context, _ struct{}) ([]model.IndustryInsight, error) {
		return d.insights.List(ctx)
	})
	if err := browse.RunBrowser(tracker, loadTimeout); err != nil {
		if errors.Is(err, browse.ErrCancelled) {
			return nil
		}
		fmt.Fprintf(os.Stderr, "browse: %v\n", err)
		os.Exit(1)
	}
	return nil
}
