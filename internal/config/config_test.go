package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zaydhassan/AspireOn/internal/ai"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// clearOverrides blanks every override variable so the host environment
// cannot leak into a test.
func clearOverrides(t *testing.T) {
	t.Helper()
	for _, k := range []string{"AI_API_KEY", "AI_MODEL", "DATABASE_URL", "REDIS_URL", "ASPIREON_SCHEDULE", "SLACK_WEBHOOK_URL"} {
		t.Setenv(k, "")
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	clearOverrides(t)
	path := writeConfig(t, `
ai:
  api_key: test-key
  model: gemini-1.5-pro
  max_retries: 5
  retry_base_delay: 500ms
  requests_per_minute: 30
job:
  schedule: "0 3 * * 1"
  concurrency: 4
  include: [tech]
  exclude: [retail]
  stale_only: true
store:
  driver: sqlite
  path: /tmp/insights.db
notification:
  type: log
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.APIKey != "test-key" || cfg.AI.Model != "gemini-1.5-pro" {
		t.Errorf("AI = %+v", cfg.AI)
	}
	if cfg.AI.MaxRetries != 5 || cfg.AI.RetryBaseDelay != 500*time.Millisecond || cfg.AI.RequestsPerMinute != 30 {
		t.Errorf("AI retry settings = %+v", cfg.AI)
	}
	if !cfg.AI.StructuredOutput {
		t.Error("StructuredOutput should default to true")
	}
	if cfg.Job.Schedule != "0 3 * * 1" || cfg.Job.Concurrency != 4 || !cfg.Job.StaleOnly {
		t.Errorf("Job = %+v", cfg.Job)
	}
	if len(cfg.Job.Include) != 1 || cfg.Job.Include[0] != "tech" {
		t.Errorf("Include = %v", cfg.Job.Include)
	}
	if cfg.Store.Path != "/tmp/insights.db" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearOverrides(t)
	path := writeConfig(t, "ai:\n  api_key: k\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.BaseURL != ai.DefaultBaseURL || cfg.AI.Model != defaultAIModel {
		t.Errorf("AI defaults = %+v", cfg.AI)
	}
	if cfg.AI.MaxRetries != 0 || cfg.AI.Timeout != 60*time.Second || cfg.AI.MaxRetryDelay != 30*time.Second {
		t.Errorf("AI retry defaults = %+v", cfg.AI)
	}
	if cfg.Job.Schedule != defaultSchedule || cfg.Job.Concurrency != 1 {
		t.Errorf("Job defaults = %+v", cfg.Job)
	}
	if cfg.Store.Driver != DriverSQLite || cfg.Store.Path != defaultSQLitePath {
		t.Errorf("Store defaults = %+v", cfg.Store)
	}
	if cfg.Notification.Type != "log" || cfg.Cache.TTL != time.Hour {
		t.Errorf("Notification/Cache defaults = %+v / %+v", cfg.Notification, cfg.Cache)
	}
}

func TestLoad_ExpandsEnvAndAppliesOverrides(t *testing.T) {
	clearOverrides(t)
	t.Setenv("MY_KEY", "from-file-env")
	t.Setenv("ASPIREON_SCHEDULE", "@daily")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/aspireon")

	path := writeConfig(t, `
ai:
  api_key: ${MY_KEY}
store:
  driver: postgres
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.APIKey != "from-file-env" {
		t.Errorf("APIKey = %q", cfg.AI.APIKey)
	}
	if cfg.Job.Schedule != "@daily" {
		t.Errorf("Schedule = %q, want env override", cfg.Job.Schedule)
	}
	if cfg.Store.DatabaseURL != "postgres://u:p@localhost/aspireon" {
		t.Errorf("DatabaseURL = %q", cfg.Store.DatabaseURL)
	}

	t.Setenv("AI_API_KEY", "override")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.APIKey != "override" {
		t.Errorf("APIKey = %q, want AI_API_KEY override", cfg.AI.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "job: [broken")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	clearOverrides(t)
	cases := map[string]struct {
		yaml    string
		wantErr string
	}{
		"missing api key": {
			yaml:    "job:\n  concurrency: 1\n",
			wantErr: "ai.api_key",
		},
		"bad schedule": {
			yaml:    "ai:\n  api_key: k\njob:\n  schedule: every sunday\n",
			wantErr: "job.schedule",
		},
		"negative concurrency": {
			yaml:    "ai:\n  api_key: k\njob:\n  concurrency: -2\n",
			wantErr: "job.concurrency",
		},
		"unknown driver": {
			yaml:    "ai:\n  api_key: k\nstore:\n  driver: mongo\n",
			wantErr: "store.driver",
		},
		"postgres without url": {
			yaml:    "ai:\n  api_key: k\nstore:\n  driver: postgres\n",
			wantErr: "store.database_url",
		},
		"slack without webhook": {
			yaml:    "ai:\n  api_key: k\nnotification:\n  type: slack\n",
			wantErr: "webhook_url is required",
		},
		"slack with foreign webhook": {
			yaml:    "ai:\n  api_key: k\nnotification:\n  type: slack\n  webhook_url: https://example.com/hook\n",
			wantErr: "hooks.slack.com",
		},
		"redis notifier without redis": {
			yaml:    "ai:\n  api_key: k\nnotification:\n  type: redis\n",
			wantErr: "cache.redis_url",
		},
		"negative retries": {
			yaml:    "ai:\n  api_key: k\n  max_retries: -1\n",
			wantErr: "ai.max_retries",
		},
		"retry cap below base delay": {
			yaml:    "ai:\n  api_key: k\n  retry_base_delay: 10s\n  max_retry_delay: 5s\n",
			wantErr: "ai.max_retry_delay",
		},
		"bad duration": {
			yaml:    "ai:\n  api_key: k\n  timeout: soon\n",
			wantErr: "ai.timeout",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			if err == nil {
				t.Fatal("Load: expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadDotEnv_MissingFileIsNotAnError(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := LoadDotEnv(); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
}

func TestLoadDotEnv_LoadsFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ASPIREON_DOTENV_PROBE=loaded\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("ASPIREON_DOTENV_PROBE", "")
	os.Unsetenv("ASPIREON_DOTENV_PROBE")

	if err := LoadDotEnv(); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("ASPIREON_DOTENV_PROBE"); got != "loaded" {
		t.Errorf("ASPIREON_DOTENV_PROBE = %q", got)
	}
}
