package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultBaseURL        = "https://api.openweathermap.org/data/2.5/weather"
	defaultMinInterval    = 10 * time.Minute
	defaultRequestTimeout = 15 * time.Second
	defaultConcurrency    = 4
	defaultRatePerMinute  = 60
)

// Config holds runtime configuration for the watcher job.
type Config struct {
	DatabaseURL    string
	APIKey         string
	BaseURL        string
	Cities         []string
	MinInterval    time.Duration
	RequestTimeout time.Duration
	Concurrency    int
	RatePerMinute  int
	DryRun         bool
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	cfg.Cities = splitCities(os.Getenv("WATCHER_CITIES"))
	if len(cfg.Cities) == 0 {
		return cfg, errors.New("WATCHER_CITIES is required")
	}

	cfg.APIKey = strings.TrimSpace(os.Getenv("OPENWEATHER_API_KEY"))
	if cfg.APIKey == "" {
		cfg.APIKey = strings.TrimSpace(os.Getenv("NEXT_PUBLIC_OPENWEATHER_API_KEY"))
	}

	cfg.BaseURL = strings.TrimSpace(os.Getenv("OPENWEATHER_BASE_URL"))
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	cfg.MinInterval = defaultMinInterval
	if v := strings.TrimSpace(os.Getenv("WATCHER_MIN_INTERVAL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid WATCHER_MIN_INTERVAL: %w", err)
		}
		cfg.MinInterval = d
	}

	cfg.RequestTimeout = defaultRequestTimeout
	if v := strings.TrimSpace(os.Getenv("OPENWEATHER_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid OPENWEATHER_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}

	cfg.Concurrency = defaultConcurrency
	if v := strings.TrimSpace(os.Getenv("WATCHER_CONCURRENCY")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("invalid WATCHER_CONCURRENCY: %s", v)
		}
		cfg.Concurrency = n
	}

	cfg.RatePerMinute = defaultRatePerMinute
	if v := strings.TrimSpace(os.Getenv("OPENWEATHER_RATE_PER_MINUTE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("invalid OPENWEATHER_RATE_PER_MINUTE: %s", v)
		}
		cfg.RatePerMinute = n
	}

	dryRun := strings.TrimSpace(os.Getenv("DRY_RUN"))
	cfg.DryRun = dryRun == "1" || strings.EqualFold(dryRun, "true")

	return cfg, nil
}

// splitCities parses a comma separated list, dropping blanks and duplicates.
func splitCities(raw string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(raw, ",") {
		city := strings.TrimSpace(part)
		if city == "" {
			continue
		}
		if _, dup := seen[city]; dup {
			continue
		}
		seen[city] = struct{}{}
		out = append(out, city)
	}
	return out
}
