// Package config loads and validates configuration for both binaries from
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Poll interval bounds. Shorter intervals hammer the shared store; longer
// ones make collaborators wait too long for each other's edits.
const (
	MinPollInterval = 5 * time.Second
	MaxPollInterval = 60 * time.Second
)

// Config holds all configuration values for the bin store server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"].
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// APIKey, when set, is required as a bearer token on every bin request.
	APIKey string
}

// Load reads the bin store configuration from environment variables.
// Returns an error listing any required variables that are not set or
// malformed.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		APIKey:      os.Getenv("BIN_API_KEY"),
	}

	var problems []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL")
	}

	var err error
	if cfg.MaxBodyBytes, err = getInt("MAX_BODY_BYTES", 1<<20); err != nil || cfg.MaxBodyBytes <= 0 {
		problems = append(problems, "MAX_BODY_BYTES (positive integer)")
	}

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set or invalid: %s", strings.Join(problems, ", "))
	}

	return cfg, nil
}

// PlannerConfig holds all configuration values for the planner.
type PlannerConfig struct {
	// Port is the TCP port `planner serve` listens on. Defaults to "8081".
	Port string

	// DBPath is the SQLite file holding the local document. Defaults to
	// "planner.db"; ":memory:" keeps everything in memory for one run.
	DBPath string

	// BinURL is the root of the shared bin store. Defaults to
	// "http://localhost:8080".
	BinURL string

	// APIKey is sent as a bearer token to the bin store when set.
	APIKey string

	// PollInterval is how often a collaborating planner reconciles.
	// Defaults to 15s; must lie within [MinPollInterval, MaxPollInterval].
	PollInterval time.Duration

	// RemoteRateLimit bounds requests per second to the bin store.
	// Defaults to 2; zero disables the limit.
	RemoteRateLimit float64

	// BudgetTotal is the trip budget in whole currency units. Defaults to 15800.
	BudgetTotal int64

	// LogLevel controls the minimum log level. Defaults to "info".
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Empty by default: the planner API is same-origin unless configured.
	CORSOrigins []string
}

// LoadPlanner reads the planner configuration from environment variables.
// Every variable is optional; an error lists the malformed ones.
func LoadPlanner() (PlannerConfig, error) {
	cfg := PlannerConfig{
		Port:        getEnv("PLANNER_PORT", "8081"),
		DBPath:      getEnv("PLANNER_DB_PATH", "planner.db"),
		BinURL:      getEnv("BIN_URL", "http://localhost:8080"),
		APIKey:      os.Getenv("BIN_API_KEY"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(os.Getenv("CORS_ORIGINS")),
	}

	var problems []string
	var err error

	if cfg.PollInterval, err = getDuration("POLL_INTERVAL", 15*time.Second); err != nil ||
		cfg.PollInterval < MinPollInterval || cfg.PollInterval > MaxPollInterval {
		problems = append(problems, fmt.Sprintf("POLL_INTERVAL (duration between %s and %s)", MinPollInterval, MaxPollInterval))
	}
	if cfg.RemoteRateLimit, err = getFloat("REMOTE_RATE_LIMIT", 2); err != nil || cfg.RemoteRateLimit < 0 {
		problems = append(problems, "REMOTE_RATE_LIMIT (non-negative number)")
	}
	if cfg.BudgetTotal, err = getInt("BUDGET_TOTAL", 15800); err != nil || cfg.BudgetTotal < 0 {
		problems = append(problems, "BUDGET_TOTAL (non-negative integer)")
	}

	if len(problems) > 0 {
		return PlannerConfig{}, fmt.Errorf("invalid environment variables: %s", strings.Join(problems, ", "))
	}
	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
