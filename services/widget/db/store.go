package db

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotConfigured is returned by handlers when no journal store is available.
var ErrNotConfigured = errors.New("lookup journal is not configured")

// Store persists resolved widget lookups and watcher observations.
type Store interface {
	SaveLookup(ctx context.Context, l Lookup) error
	ListLookups(ctx context.Context, limit int) ([]Lookup, error)
	InsertObservations(ctx context.Context, obs []Observation) error
	LastObservations(ctx context.Context, cities []string) (map[string]LastObservation, error)
	ListObservations(ctx context.Context, city string, limit int) ([]Observation, error)
	Close()
}

// Lookup is one resolved widget submission.
type Lookup struct {
	ID            int64     `json:"id"`
	City          string    `json:"city"`
	Outcome       string    `json:"outcome"`
	FailureKind   *string   `json:"failure_kind,omitempty"`
	Message       *string   `json:"message,omitempty"`
	Location      *string   `json:"location,omitempty"`
	Country       *string   `json:"country,omitempty"`
	ConditionCode *int      `json:"condition_code,omitempty"`
	Animation     *string   `json:"animation,omitempty"`
	TempC         *float64  `json:"temp_c,omitempty"`
	Humidity      *int      `json:"humidity,omitempty"`
	Applied       bool      `json:"applied"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// Observation is one provider reading captured by the watcher.
type Observation struct {
	City          string    `json:"city"`
	Location      string    `json:"location"`
	Country       string    `json:"country"`
	ObservedAt    time.Time `json:"observed_at"`
	ConditionCode int       `json:"condition_code"`
	Description   string    `json:"description"`
	Icon          string    `json:"icon"`
	Animation     string    `json:"animation"`
	TempC         float64   `json:"temp_c"`
	Humidity      int       `json:"humidity"`
	Sunrise       time.Time `json:"sunrise"`
	Sunset        time.Time `json:"sunset"`
	IngestedAt    time.Time `json:"ingested_at"`
}

// LastObservation is the most recent stored reading for a city.
type LastObservation struct {
	ObservedAt time.Time
	IngestedAt time.Time
}

// Open selects a backend from the URL scheme: postgres:// and postgresql://
// use pgx, sqlite:// and file: use the pure Go SQLite driver.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		pg, err := NewPostgres(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case strings.HasPrefix(databaseURL, "sqlite://"), strings.HasPrefix(databaseURL, "file:"):
		lite, err := NewSQLite(ctx, strings.TrimPrefix(databaseURL, "sqlite://"))
		if err != nil {
			return nil, err
		}
		return lite, nil
	case databaseURL == "":
		return nil, ErrNotConfigured
	}
	return nil, errors.New("unsupported DATABASE_URL scheme")
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
