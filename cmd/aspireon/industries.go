package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zaydhassan/AspireOn/internal/model"
)

var industriesCmd = &cobra.Command{
	Use:   "industries",
	Short: "List the industries referenced by user profiles",
	Long:  "Runs industry discovery and prints each industry with the state of its stored insight.",
	RunE:  runIndustries,
}

func init() {
	rootCmd.AddCommand(industriesCmd)
}

func runIndustries(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	d, err := setupStores(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer d.close()

	industries, err := d.backend.Industries(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list industries: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-40s %-10s %s\n", "Industry", "Insight", "Next update")
	fmt.Println(strings.Repeat("─", 72))

	now := time.Now()
	fresh, stale, missing := 0, 0, 0
	for _, industry := range industries {
		in, err := d.insights.Get(ctx, industry)
		switch {
		case errors.Is(err, model.ErrInsightNotFound):
			missing++
			fmt.Printf("%-40s %-10s %s\n", industry, "missing", "-")
		case err != nil:
			fmt.Printf("%-40s %-10s %v\n", industry, "error", err)
		case in.IsStale(now):
			stale++
			fmt.Printf("%-40s %-10s %s\n", industry, "stale", in.NextUpdate.Local().Format("2006-01-02 15:04"))
		default:
			fresh++
			fmt.Printf("%-40s %-10s %s\n", industry, "fresh", in.NextUpdate.Local().Format("2006-01-02 15:04"))
		}
	}

	fmt.Printf("\nTotal: %d industries (%d fresh, %d stale, %d missing)\n", len(industries), fresh, stale, missing)
	return nil
}
