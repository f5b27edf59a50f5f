package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultBaseURL       = "https://api.openweathermap.org/data/2.5/weather"
	defaultIconBaseURL   = "https://openweathermap.org/img/wn"
	defaultTimeout       = 15 * time.Second
	defaultRatePerMinute = 60
	defaultSessionTTL    = 30 * time.Minute
)

// Config holds environment-driven settings for the widget service.
type Config struct {
	APIKey         string
	BaseURL        string
	IconBaseURL    string
	RequestTimeout time.Duration
	RatePerMinute  int
	Port           int
	DatabaseURL    string
	BearerToken    string
	SessionTTL     time.Duration
	ZipkinEndpoint string
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		BaseURL:        defaultBaseURL,
		IconBaseURL:    defaultIconBaseURL,
		RequestTimeout: defaultTimeout,
		RatePerMinute:  defaultRatePerMinute,
		Port:           8080,
		SessionTTL:     defaultSessionTTL,
	}

	// A missing key is not fatal: the provider rejects the call and the
	// widget shows its usual lookup failure.
	cfg.APIKey = strings.TrimSpace(os.Getenv("OPENWEATHER_API_KEY"))
	if cfg.APIKey == "" {
		cfg.APIKey = strings.TrimSpace(os.Getenv("NEXT_PUBLIC_OPENWEATHER_API_KEY"))
	}

	if v := strings.TrimSpace(os.Getenv("OPENWEATHER_BASE_URL")); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENWEATHER_ICON_BASE_URL")); v != "" {
		cfg.IconBaseURL = v
	}

	if v := strings.TrimSpace(os.Getenv("OPENWEATHER_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("invalid OPENWEATHER_TIMEOUT: %s", v)
		}
		cfg.RequestTimeout = d
	}

	if v := strings.TrimSpace(os.Getenv("OPENWEATHER_RATE_PER_MINUTE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("invalid OPENWEATHER_RATE_PER_MINUTE: %s", v)
		}
		cfg.RatePerMinute = n
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := os.Getenv("WIDGET_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid WIDGET_PORT: %s", portStr)
		}
	}

	if v := strings.TrimSpace(os.Getenv("SESSION_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("invalid SESSION_TTL: %s", v)
		}
		cfg.SessionTTL = d
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.BearerToken = os.Getenv("API_BEARER_TOKEN")
	cfg.ZipkinEndpoint = strings.TrimSpace(os.Getenv("ZIPKIN_ENDPOINT"))

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
