package db

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using sqlite (pure Go driver modernc.org/sqlite).
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchemaSQL = `
CREATE TABLE IF NOT EXISTS lookups (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    city           TEXT NOT NULL,
    outcome        TEXT NOT NULL,
    failure_kind   TEXT,
    message        TEXT,
    location       TEXT,
    country        TEXT,
    condition_code INTEGER,
    animation      TEXT,
    temp_c         REAL,
    humidity       INTEGER,
    applied        INTEGER NOT NULL,
    submitted_at   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS observations (
    city           TEXT NOT NULL,
    location       TEXT NOT NULL,
    country        TEXT NOT NULL,
    observed_at    TEXT NOT NULL,
    condition_code INTEGER NOT NULL,
    description    TEXT NOT NULL,
    icon           TEXT NOT NULL,
    animation      TEXT NOT NULL,
    temp_c         REAL NOT NULL,
    humidity       INTEGER NOT NULL,
    sunrise        TEXT NOT NULL,
    sunset         TEXT NOT NULL,
    ingested_at    TEXT NOT NULL,
    PRIMARY KEY (city, observed_at)
);`

// NewSQLite opens (or creates) the database at path and applies the schema.
func NewSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time; SQLite serialises writes anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		log.Println("warning: could not set WAL mode:", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchemaSQL); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() {
	if err := s.db.Close(); err != nil {
		log.Println("warning: closing sqlite:", err)
	}
}

func (s *SQLiteStore) SaveLookup(ctx context.Context, l Lookup) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO lookups(city, outcome, failure_kind, message, location, country,
        condition_code, animation, temp_c, humidity, applied, submitted_at) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
		l.City, l.Outcome, l.FailureKind, l.Message, l.Location, l.Country,
		l.ConditionCode, l.Animation, l.TempC, l.Humidity, l.Applied, formatTime(l.SubmittedAt))
	return err
}

func (s *SQLiteStore) ListLookups(ctx context.Context, limit int) ([]Lookup, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, city, outcome, failure_kind, message, location, country,
        condition_code, animation, temp_c, humidity, applied, submitted_at
        FROM lookups ORDER BY submitted_at DESC, id DESC LIMIT ?`, clampLimit(limit, 50, 500))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Lookup, 0)
	for rows.Next() {
		var l Lookup
		var failureKind, message, location, country, animation sql.NullString
		var code, humidity sql.NullInt64
		var temp sql.NullFloat64
		var ts string
		if err := rows.Scan(&l.ID, &l.City, &l.Outcome, &failureKind, &message, &location, &country,
			&code, &animation, &temp, &humidity, &l.Applied, &ts); err != nil {
			return nil, err
		}
		l.FailureKind = nullString(failureKind)
		l.Message = nullString(message)
		l.Location = nullString(location)
		l.Country = nullString(country)
		l.Animation = nullString(animation)
		l.ConditionCode = nullInt(code)
		l.Humidity = nullInt(humidity)
		if temp.Valid {
			v := temp.Float64
			l.TempC = &v
		}
		l.SubmittedAt = parseTime(ts)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) InsertObservations(ctx context.Context, obs []Observation) error {
	if len(obs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO observations(city, location, country, observed_at, condition_code,
        description, icon, animation, temp_c, humidity, sunrise, sunset, ingested_at)
        VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)
        ON CONFLICT(city, observed_at) DO UPDATE SET
            condition_code = excluded.condition_code,
            description = excluded.description,
            icon = excluded.icon,
            animation = excluded.animation,
            temp_c = excluded.temp_c,
            humidity = excluded.humidity,
            ingested_at = excluded.ingested_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, o := range obs {
		if _, err := stmt.ExecContext(ctx, o.City, o.Location, o.Country, formatTime(o.ObservedAt), o.ConditionCode,
			o.Description, o.Icon, o.Animation, o.TempC, o.Humidity,
			formatTime(o.Sunrise), formatTime(o.Sunset), formatTime(o.IngestedAt)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) LastObservations(ctx context.Context, cities []string) (map[string]LastObservation, error) {
	result := make(map[string]LastObservation, len(cities))
	if len(cities) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cities)), ",")
	args := make([]any, 0, len(cities))
	for _, c := range cities {
		args = append(args, c)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT city, MAX(observed_at), MAX(ingested_at)
        FROM observations WHERE city IN (`+placeholders+`) GROUP BY city`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var city, observed, ingested string
		if err := rows.Scan(&city, &observed, &ingested); err != nil {
			return nil, err
		}
		result[city] = LastObservation{ObservedAt: parseTime(observed), IngestedAt: parseTime(ingested)}
	}
	return result, rows.Err()
}

func (s *SQLiteStore) ListObservations(ctx context.Context, city string, limit int) ([]Observation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT city, location, country, observed_at, condition_code, description,
        icon, animation, temp_c, humidity, sunrise, sunset, ingested_at
        FROM observations WHERE city = ? ORDER BY observed_at DESC LIMIT ?`, city, clampLimit(limit, 50, 500))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Observation, 0)
	for rows.Next() {
		var o Observation
		var observed, sunrise, sunset, ingested string
		if err := rows.Scan(&o.City, &o.Location, &o.Country, &observed, &o.ConditionCode, &o.Description,
			&o.Icon, &o.Animation, &o.TempC, &o.Humidity, &sunrise, &sunset, &ingested); err != nil {
			return nil, err
		}
		o.ObservedAt = parseTime(observed)
		o.Sunrise = parseTime(sunrise)
		o.Sunset = parseTime(sunset)
		o.IngestedAt = parseTime(ingested)
		out = append(out, o)
	}
	return out, rows.Err()
}

// Timestamps are stored as fixed-width UTC text so they sort lexically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
