// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken        string
	BotLogin           string
	HostOwner          string // Owner of the automation's own repository.
	HostRepo           string // Name of the automation's own repository.
	ReposFile          string
	DBPath             string
	ListenAddr         string
	WebhookSecret      string
	CronSchedule       string
	WarningInterval    time.Duration
	DisqualifyInterval time.Duration
	RequirePullRequest bool
	DryRun             bool
}

// HasHostRepo reports whether the host repository pair is configured. Its
// absence is recoverable: the cron reconciler skips its toggle phase.
func (c *Config) HasHostRepo() bool {
	return c.HostOwner != "" && c.HostRepo != ""
}

// Load reads configuration from environment variables and returns a validated
// Config. ASSIGNWATCH_GITHUB_TOKEN is required. Optional variables with
// defaults: ASSIGNWATCH_BOT_LOGIN (assignwatch[bot]), ASSIGNWATCH_REPOS_FILE
// (repos.yaml), ASSIGNWATCH_DB_PATH (assignwatch.db), ASSIGNWATCH_LISTEN_ADDR
// (127.0.0.1:8080), ASSIGNWATCH_CRON_SCHEDULE (@every 15m),
// ASSIGNWATCH_WARNING_INTERVAL (84h), ASSIGNWATCH_DISQUALIFY_INTERVAL (168h).
// ASSIGNWATCH_HOST_REPO ("owner/repo") is optional; when absent the cron
// reconciler cannot toggle the scheduled workflow.
func Load() (*Config, error) {
	token := os.Getenv("ASSIGNWATCH_GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("ASSIGNWATCH_GITHUB_TOKEN is required")
	}

	cfg := &Config{
		GitHubToken:        token,
		BotLogin:           "assignwatch[bot]",
		ReposFile:          "repos.yaml",
		DBPath:             "assignwatch.db",
		ListenAddr:         "127.0.0.1:8080",
		CronSchedule:       "@every 15m",
		WarningInterval:    84 * time.Hour,
		DisqualifyInterval: 168 * time.Hour,
	}

	if v, ok := os.LookupEnv("ASSIGNWATCH_BOT_LOGIN"); ok && v != "" {
		cfg.BotLogin = v
	}

	if v, ok := os.LookupEnv("ASSIGNWATCH_HOST_REPO"); ok && v != "" {
		owner, repo, found := strings.Cut(v, "/")
		if !found || owner == "" || repo == "" {
			return nil, fmt.Errorf("ASSIGNWATCH_HOST_REPO must be in owner/repo form, got %q", v)
		}
		cfg.HostOwner = owner
		cfg.HostRepo = repo
	}

	if v, ok := os.LookupEnv("ASSIGNWATCH_REPOS_FILE"); ok {
		cfg.ReposFile = v
	}
	if v, ok := os.LookupEnv("ASSIGNWATCH_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := os.LookupEnv("ASSIGNWATCH_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	cfg.WebhookSecret = os.Getenv("ASSIGNWATCH_WEBHOOK_SECRET")
	if v, ok := os.LookupEnv("ASSIGNWATCH_CRON_SCHEDULE"); ok {
		cfg.CronSchedule = v
	}

	var err error
	if cfg.WarningInterval, err = durationEnv("ASSIGNWATCH_WARNING_INTERVAL", cfg.WarningInterval); err != nil {
		return nil, err
	}
	if cfg.DisqualifyInterval, err = durationEnv("ASSIGNWATCH_DISQUALIFY_INTERVAL", cfg.DisqualifyInterval); err != nil {
		return nil, err
	}
	if cfg.RequirePullRequest, err = boolEnv("ASSIGNWATCH_REQUIRE_PULL_REQUEST", false); err != nil {
		return nil, err
	}
	if cfg.DryRun, err = boolEnv("ASSIGNWATCH_DRY_RUN", false); err != nil {
		return nil, err
	}

	if cfg.WarningInterval <= 0 || cfg.DisqualifyInterval <= 0 {
		return nil, fmt.Errorf("warning and disqualification intervals must be positive")
	}

	return cfg, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", name, v, err)
	}
	return parsed, nil
}

func boolEnv(name string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s has invalid boolean %q: %w", name, v, err)
	}
	return parsed, nil
}
