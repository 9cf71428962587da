package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zaydhassan/AspireOn/internal/profile"
	"github.com/zaydhassan/AspireOn/internal/validate"
)

var (
	onboardUser string
	onboardForm validate.OnboardingForm
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Create or update a user profile",
	Long: "Validates the onboarding form, creates the industry's insight if none exists yet, " +
		"then saves the profile.",
	RunE: runOnboard,
}

func init() {
	f := onboardCmd.Flags()
	f.StringVar(&onboardUser, "user", "", "user id (required)")
	f.StringVar(&onboardForm.Industry, "industry", "", "industry, e.g. tech")
	f.StringVar(&onboardForm.SubIndustry, "sub-industry", "", "specialization, e.g. \"Software Development\"")
	f.StringVar(&onboardForm.Bio, "bio", "", "short professional bio")
	f.StringVar(&onboardForm.Experience, "experience", "", "years of experience (0-50)")
	f.StringVar(&onboardForm.Skills, "skills", "", "comma-separated skills")
	_ = onboardCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(onboardCmd)
}

func runOnboard(cmd *cobra.Command, args []string) error {
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

	svc := profile.NewService(d.backend, d.insights, setupGenerator(cfg, logger), logger)
	p, err := svc.Onboard(ctx, onboardUser, onboardForm)

	var fieldErrs validate.FieldErrors
	if errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))
		for f := range fieldErrs {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		fmt.Fprintln(os.Stderr, "Invalid onboarding form:")
		for _, f := range fields {
			fmt.Fprintf(os.Stderr, "  %-14s %s\n", f, fieldErrs[f])
		}
		os.Exit(1)
	}
	if err != nil {
		logger.Error("onboarding failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Profile %s saved for %s (industry %s, %d skills)\n", p.ID, p.UserID, p.Industry, len(p.Skills))
	return nil
}
