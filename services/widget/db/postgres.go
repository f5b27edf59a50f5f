package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const postgresSchemaSQL = `
CREATE SCHEMA IF NOT EXISTS widget;

CREATE TABLE IF NOT EXISTS widget.lookups (
    id             BIGSERIAL PRIMARY KEY,
    city           TEXT NOT NULL,
    outcome        TEXT NOT NULL,
    failure_kind   TEXT,
    message        TEXT,
    location       TEXT,
    country        TEXT,
    condition_code INTEGER,
    animation      TEXT,
    temp_c         DOUBLE PRECISION,
    humidity       INTEGER,
    applied        BOOLEAN NOT NULL,
    submitted_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS widget.observations (
    city           TEXT NOT NULL,
    location       TEXT NOT NULL,
    country        TEXT NOT NULL,
    observed_at    TIMESTAMPTZ NOT NULL,
    condition_code INTEGER NOT NULL,
    description    TEXT NOT NULL,
    icon           TEXT NOT NULL,
    animation      TEXT NOT NULL,
    temp_c         DOUBLE PRECISION NOT NULL,
    humidity       INTEGER NOT NULL,
    sunrise        TIMESTAMPTZ NOT NULL,
    sunset         TIMESTAMPTZ NOT NULL,
    ingested_at    TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (city, observed_at)
);
`

// NewPostgres connects a pool and makes sure the schema exists.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the pool resources.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const insertLookupSQL = `
    INSERT INTO widget.lookups (city, outcome, failure_kind, message, location, country,
        condition_code, animation, temp_c, humidity, applied, submitted_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`

// SaveLookup appends a resolved submission to the journal.
func (s *PostgresStore) SaveLookup(ctx context.Context, l Lookup) error {
	_, err := s.pool.Exec(ctx, insertLookupSQL,
		l.City, l.Outcome, l.FailureKind, l.Message, l.Location, l.Country,
		l.ConditionCode, l.Animation, l.TempC, l.Humidity, l.Applied, l.SubmittedAt.UTC())
	return err
}

const listLookupsSQL = `
    SELECT id, city, outcome, failure_kind, message, location, country,
        condition_code, animation, temp_c, humidity, applied, submitted_at
    FROM widget.lookups
    ORDER BY submitted_at DESC, id DESC
    LIMIT $1
`

// ListLookups returns the most recent lookups first.
func (s *PostgresStore) ListLookups(ctx context.Context, limit int) ([]Lookup, error) {
	rows, err := s.pool.Query(ctx, listLookupsSQL, clampLimit(limit, 50, 500))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lookups := make([]Lookup, 0)
	for rows.Next() {
		var l Lookup
		if err := rows.Scan(
			&l.ID,
			&l.City,
			&l.Outcome,
			&l.FailureKind,
			&l.Message,
			&l.Location,
			&l.Country,
			&l.ConditionCode,
			&l.Animation,
			&l.TempC,
			&l.Humidity,
			&l.Applied,
			&l.SubmittedAt,
		); err != nil {
			return nil, err
		}
		lookups = append(lookups, l)
	}
	return lookups, rows.Err()
}

const upsertObservationSQL = `
INSERT INTO widget.observations (city, location, country, observed_at, condition_code, description,
    icon, animation, temp_c, humidity, sunrise, sunset, ingested_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (city, observed_at) DO UPDATE
SET condition_code = EXCLUDED.condition_code,
    description = EXCLUDED.description,
    icon = EXCLUDED.icon,
    animation = EXCLUDED.animation,
    temp_c = EXCLUDED.temp_c,
    humidity = EXCLUDED.humidity,
    ingested_at = EXCLUDED.ingested_at`

// InsertObservations batch-upserts watcher readings.
func (s *PostgresStore) InsertObservations(ctx context.Context, obs []Observation) error {
	if len(obs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, o := range obs {
		batch.Queue(upsertObservationSQL,
			o.City, o.Location, o.Country, o.ObservedAt.UTC(), o.ConditionCode, o.Description,
			o.Icon, o.Animation, o.TempC, o.Humidity, o.Sunrise.UTC(), o.Sunset.UTC(), o.IngestedAt.UTC())
	}

	res := s.pool.SendBatch(ctx, batch)
	defer res.Close()

	for range obs {
		if _, err := res.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LastObservations loads the most recent stored reading per city.
func (s *PostgresStore) LastObservations(ctx context.Context, cities []string) (map[string]LastObservation, error) {
	result := make(map[string]LastObservation, len(cities))
	if len(cities) == 0 {
		return result, nil
	}

	rows, err := s.pool.Query(ctx, `
SELECT DISTINCT ON (city) city, observed_at, ingested_at
FROM widget.observations
WHERE city = ANY($1)
ORDER BY city, observed_at DESC`, cities)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var city string
		var last LastObservation
		if err := rows.Scan(&city, &last.ObservedAt, &last.IngestedAt); err != nil {
			return nil, err
		}
		result[city] = last
	}
	return result, rows.Err()
}

const listObservationsSQL = `
    SELECT city, location, country, observed_at, condition_code, description, icon,
        animation, temp_c, humidity, sunrise, sunset, ingested_at
    FROM widget.observations
    WHERE city = $1
    ORDER BY observed_at DESC
    LIMIT $2
`

// ListObservations returns a city's readings, newest first.
func (s *PostgresStore) ListObservations(ctx context.Context, city string, limit int) ([]Observation, error) {
	rows, err := s.pool.Query(ctx, listObservationsSQL, city, clampLimit(limit, 50, 500))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Observation, 0)
	for rows.Next() {
		var o Observation
		if err := rows.Scan(
			&o.City,
			&o.Location,
			&o.Country,
			&o.ObservedAt,
			&o.ConditionCode,
			&o.Description,
			&o.Icon,
			&o.Animation,
			&o.TempC,
			&o.Humidity,
			&o.Sunrise,
			&o.Sunset,
			&o.IngestedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
