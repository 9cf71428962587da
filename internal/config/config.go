package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/zaydhassan/AspireOn/internal/ai"
)

// Config is the root configuration for the insight refresh service.
type Config struct {
	AI           AIConfig
	Job          JobConfig
	Store        StoreConfig
	Cache        CacheConfig
	Notification NotificationConfig
}

// AIConfig points at an OpenAI-compatible chat completions endpoint.
type AIConfig struct {
	BaseURL           string
	APIKey            string
	Model             string
	StructuredOutput  bool
	Timeout           time.Duration // per-request timeout
	MaxRetries        int
	RetryBaseDelay    time.Duration
	MaxRetryDelay     time.Duration // caps a single backoff wait, Retry-After included
	RequestsPerMinute int           // 0 disables rate limiting
}

// JobConfig controls when the refresh job runs and what it touches.
type JobConfig struct {
	Schedule    string // standard 5-field cron spec or descriptor
	RunOnStart  bool
	Concurrency int
	Include     []string // keywords an industry must contain; empty keeps all
	Exclude     []string
	StaleOnly   bool
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver      string // "sqlite" or "postgres"
	Path        string // sqlite file
	DatabaseURL string // postgres DSN
	MaxConns    int32
}

// CacheConfig enables the Redis read-through cache when RedisURL is set.
type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log", "slack" or "redis"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
	Channel    string `yaml:"channel"`     // redis pub/sub channel
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultAIModel     = "gemini-1.5-flash"
	defaultSchedule    = "0 0 * * 0"
	defaultSQLitePath  = "aspireon.db"
	slackWebhookPrefix = "https://hooks.slack.com/"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	AI           rawAIConfig        `yaml:"ai"`
	Job          rawJobConfig       `yaml:"job"`
	Store        rawStoreConfig     `yaml:"store"`
	Cache        rawCacheConfig     `yaml:"cache"`
	Notification NotificationConfig `yaml:"notification"`
}

type rawAIConfig struct {
	BaseURL           string `yaml:"base_url"`
	APIKey            string `yaml:"api_key"`
	Model             string `yaml:"model"`
	StructuredOutput  *bool  `yaml:"structured_output"`
	Timeout           string `yaml:"timeout"`
	MaxRetries        int    `yaml:"max_retries"`
	RetryBaseDelay    string `yaml:"retry_base_delay"`
	MaxRetryDelay     string `yaml:"max_retry_delay"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

type rawJobConfig struct {
	Schedule    string   `yaml:"schedule"`
	RunOnStart  bool     `yaml:"run_on_start"`
	Concurrency int      `yaml:"concurrency"`
	Include     []string `yaml:"include"`
	Exclude     []string `yaml:"exclude"`
	StaleOnly   bool     `yaml:"stale_only"`
}

type rawStoreConfig struct {
	Driver      string `yaml:"driver"`
	Path        string `yaml:"path"`
	DatabaseURL string `yaml:"database_url"`
	MaxConns    int32  `yaml:"max_conns"`
}

type rawCacheConfig struct {
	RedisURL string `yaml:"redis_url"`
	TTL      string `yaml:"ttl"`
}

// envOverrides are applied on top of the YAML file.
type envOverrides struct {
	AIAPIKey    string `env:"AI_API_KEY"`
	AIModel     string `env:"AI_MODEL"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	Schedule    string `env:"ASPIREON_SCHEDULE"`
	SlackURL    string `env:"SLACK_WEBHOOK_URL"`
}

// LoadDotEnv loads ./.env into the process environment when it exists.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return fmt.Errorf("load .env file: %w", err)
		}
	}
	return nil
}

// Load reads and parses the YAML config file at path, applies environment
// overrides, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return nil, fmt.Errorf("parse env overrides: %w", err)
	}

	cfg, err := build(raw)
	if err != nil {
		return nil, err
	}
	cfg.applyOverrides(ov)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func build(raw rawConfig) (*Config, error) {
	aiTimeout, err := parseDuration("ai.timeout", raw.AI.Timeout, 60*time.Second)
	if err != nil {
		return nil, err
	}
	retryDelay, err := parseDuration("ai.retry_base_delay", raw.AI.RetryBaseDelay, 2*time.Second)
	if err != nil {
		return nil, err
	}
	maxRetryDelay, err := parseDuration("ai.max_retry_delay", raw.AI.MaxRetryDelay, 30*time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("cache.ttl", raw.Cache.TTL, time.Hour)
	if err != nil {
		return nil, err
	}

	structured := true
	if raw.AI.StructuredOutput != nil {
		structured = *raw.AI.StructuredOutput
	}

	cfg := &Config{
		AI: AIConfig{
			BaseURL:           orDefault(raw.AI.BaseURL, ai.DefaultBaseURL),
			APIKey:            raw.AI.APIKey,
			Model:             orDefault(raw.AI.Model, defaultAIModel),
			StructuredOutput:  structured,
			Timeout:           aiTimeout,
			MaxRetries:        raw.AI.MaxRetries,
			RetryBaseDelay:    retryDelay,
			MaxRetryDelay:     maxRetryDelay,
			RequestsPerMinute: raw.AI.RequestsPerMinute,
		},
		Job: JobConfig{
			Schedule:    orDefault(raw.Job.Schedule, defaultSchedule),
			RunOnStart:  raw.Job.RunOnStart,
			Concurrency: raw.Job.Concurrency,
			Include:     raw.Job.Include,
			Exclude:     raw.Job.Exclude,
			StaleOnly:   raw.Job.StaleOnly,
		},
		Store: StoreConfig{
			Driver:      orDefault(strings.ToLower(raw.Store.Driver), DriverSQLite),
			Path:        orDefault(raw.Store.Path, defaultSQLitePath),
			DatabaseURL: raw.Store.DatabaseURL,
			MaxConns:    raw.Store.MaxConns,
		},
		Cache: CacheConfig{
			RedisURL: raw.Cache.RedisURL,
			TTL:      cacheTTL,
		},
		Notification: raw.Notification,
	}
	if cfg.Job.Concurrency == 0 {
		cfg.Job.Concurrency = 1
	}
	if cfg.Store.MaxConns == 0 {
		cfg.Store.MaxConns = 4
	}
	if cfg.Notification.Type == "" {
		cfg.Notification.Type = "log"
	}
	return cfg, nil
}

func (c *Config) applyOverrides(ov envOverrides) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.AI.APIKey, ov.AIAPIKey)
	set(&c.AI.Model, ov.AIModel)
	set(&c.Store.DatabaseURL, ov.DatabaseURL)
	set(&c.Cache.RedisURL, ov.RedisURL)
	set(&c.Job.Schedule, ov.Schedule)
	set(&c.Notification.WebhookURL, ov.SlackURL)
}

func parseDuration(field, s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	return d, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func validate(cfg *Config) error {
	if _, err := cron.ParseStandard(cfg.Job.Schedule); err != nil {
		return fmt.Errorf("job.schedule %q is not a valid cron spec: %w", cfg.Job.Schedule, err)
	}
	if cfg.Job.Concurrency < 1 {
		return fmt.Errorf("job.concurrency must be at least 1, got %d", cfg.Job.Concurrency)
	}

	switch cfg.Store.Driver {
	case DriverSQLite:
		if cfg.Store.Path == "" {
			return fmt.Errorf("store.path is required when driver is %q", DriverSQLite)
		}
	case DriverPostgres:
		if cfg.Store.DatabaseURL == "" {
			return fmt.Errorf("store.database_url is required when driver is %q", DriverPostgres)
		}
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, cfg.Store.Driver)
	}

	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %v", cfg.Cache.TTL)
	}

	switch cfg.Notification.Type {
	case "log", "redis":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	default:
		return fmt.Errorf("notification.type must be log, slack or redis, got %q", cfg.Notification.Type)
	}
	if cfg.Notification.Type == "redis" && cfg.Cache.RedisURL == "" {
		return fmt.Errorf("cache.redis_url is required when notification type is \"redis\"")
	}

	if cfg.AI.APIKey == "" {
		return fmt.Errorf("ai.api_key is required (or set AI_API_KEY)")
	}
	if cfg.AI.BaseURL == "" {
		return fmt.Errorf("ai.base_url is required")
	}
	if cfg.AI.Model == "" {
		return fmt.Errorf("ai.model is required")
	}
	if cfg.AI.MaxRetries < 0 {
		return fmt.Errorf("ai.max_retries must not be negative, got %d", cfg.AI.MaxRetries)
	}
	if cfg.AI.MaxRetryDelay < cfg.AI.RetryBaseDelay {
		return fmt.Errorf("ai.max_retry_delay (%s) must not be below ai.retry_base_delay (%s)", cfg.AI.MaxRetryDelay, cfg.AI.RetryBaseDelay)
	}
	if cfg.AI.RequestsPerMinute < 0 {
		return fmt.Errorf("ai.requests_per_minute must not be negative, got %d", cfg.AI.RequestsPerMinute)
	}

	return nil
}
