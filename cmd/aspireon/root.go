package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/zaydhassan/AspireOn/internal/ai"
	"github.com/zaydhassan/AspireOn/internal/config"
	"github.com/zaydhassan/AspireOn/internal/model"
	"github.com/zaydhassan/AspireOn/internal/notifier"
	"github.com/zaydhassan/AspireOn/internal/ratelimit"
	"github.com/zaydhassan/AspireOn/internal/retry"
	"github.com/zaydhassan/AspireOn/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "aspireon",
	Short: "Career-coach industry insights",
	Long:  "AspireOn keeps an AI-generated market insight record fresh for every industry its users work in.",
	// Default to `start` so that `aspireon` with no args runs the daemon.
	RunE:          runStart,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: ASPIREON_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > ASPIREON_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	if path == "" {
		if env := os.Getenv("ASPIREON_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// backend is a primary store: insights, profiles and industry discovery.
type backend interface {
	model.InsightStore
	model.IndustrySource
	model.ProfileStore
	Close() error
}

// deps holds everything built from the config. close releases it all.
type deps struct {
	backend  backend
	insights model.InsightStore
	redis    *redis.Client // nil unless a cache or notifier needs it
	close    func()
}

func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (backend, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		logger.Info("using postgres store")
		pg, err := store.NewPostgresStore(ctx, cfg.Store.DatabaseURL, cfg.Store.MaxConns, logger)
		if err != nil {
			return nil, err
		}
		return pg, nil
	default:
		logger.Info("using sqlite store", "path", cfg.Store.Path)
		lite, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		return lite, nil
	}
}

// setupStores opens the backend and, when configured, puts the Redis cache
// in front of it.
func setupStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*deps, error) {
	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	d := &deps{backend: b, insights: b, close: func() { b.Close() }}

	if cfg.Cache.RedisURL == "" {
		return d, nil
	}
	client, err := store.NewRedisClient(ctx, cfg.Cache.RedisURL)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.Info("redis cache enabled", "ttl", cfg.Cache.TTL.String())
	d.insights = store.NewCachedStore(b, client, cfg.Cache.TTL, logger)
	d.redis = client
	d.close = func() {
		client.Close()
		b.Close()
	}
	return d, nil
}

// setupGenerator builds the provider chain: retries around a rate limiter
// around the HTTP client, so every attempt waits for a token.
func setupGenerator(cfg *config.Config, logger *slog.Logger) *ai.InsightGenerator {
	httpClient := &http.Client{Timeout: cfg.AI.Timeout}

	var provider ai.LLMProvider = ai.NewOpenAIProvider(
		cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.StructuredOutput, httpClient,
	)
	provider = ratelimit.NewRateLimitedProvider(provider, ratelimit.NewLimiter(cfg.AI.RequestsPerMinute))
	provider = retry.NewRetryProvider(provider, retry.Policy{
		MaxRetries: cfg.AI.MaxRetries,
		BaseDelay:  cfg.AI.RetryBaseDelay,
		MaxDelay:   cfg.AI.MaxRetryDelay,
	}, logger.With("llm_model", cfg.AI.Model, "llm_base_url", cfg.AI.BaseURL))

	logger.Info("ai provider configured",
		"base_url", cfg.AI.BaseURL,
		"model", cfg.AI.Model,
		"structured_output", cfg.AI.StructuredOutput,
		"max_retries", cfg.AI.MaxRetries,
		"requests_per_minute", cfg.AI.RequestsPerMinute,
	)
	return ai.NewInsightGenerator(provider, nil, logger)
}

// setupNotifier always logs the run; slack and redis are added on top.
func setupNotifier(ctx context.Context, cfg *config.Config, d *deps, logger *slog.Logger) (model.RunNotifier, error) {
	logNotifier := notifier.NewLogNotifier(logger)

	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		httpClient := &http.Client{Timeout: 30 * time.Second}
		return notifier.MultiNotifier{logNotifier, notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)}, nil
	case "redis":
		if d.redis == nil {
			client, err := store.NewRedisClient(ctx, cfg.Cache.RedisURL)
			if err != nil {
				return nil, fmt.Errorf("connect redis for notifications: %w", err)
			}
			prev := d.close
			d.redis = client
			d.close = func() {
				client.Close()
				prev()
			}
		}
		logger.Info("using redis notifier", "channel", cfg.Notification.Channel)
		return notifier.MultiNotifier{logNotifier, notifier.NewRedisNotifier(d.redis, cfg.Notification.Channel, logger)}, nil
	default:
		return logNotifier, nil
	}
}
