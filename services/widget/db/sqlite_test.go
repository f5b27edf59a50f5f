package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "widget_test.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestSQLiteSaveAndListLookups(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	temp := 11.2
	success := Lookup{
		City:          "London",
		Outcome:       "success",
		Location:      strPtr("London"),
		Country:       strPtr("GB"),
		ConditionCode: intPtr(800),
		Animation:     strPtr("sun"),
		TempC:         &temp,
		Humidity:      intPtr(71),
		Applied:       true,
		SubmittedAt:   now.Add(-time.Minute),
	}
	failure := Lookup{
		City:        "Atlantis",
		Outcome:     "failure",
		FailureKind: strPtr("request"),
		Message:     strPtr("City not found"),
		Applied:     true,
		SubmittedAt: now,
	}

	for _, l := range []Lookup{success, failure} {
		if err := s.SaveLookup(ctx, l); err != nil {
			t.Fatalf("SaveLookup failed: %v", err)
		}
	}

	list, err := s.ListLookups(ctx, 10)
	if err != nil {
		t.Fatalf("ListLookups failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 lookups, got %d", len(list))
	}
	if list[0].City != "Atlantis" || list[1].City != "London" {
		t.Errorf("lookups not ordered newest first: %q, %q", list[0].City, list[1].City)
	}
	if list[0].Message == nil || *list[0].Message != "City not found" || list[0].TempC != nil {
		t.Errorf("unexpected failure row %+v", list[0])
	}
	if list[1].ConditionCode == nil || *list[1].ConditionCode != 800 || !list[1].Applied {
		t.Errorf("unexpected success row %+v", list[1])
	}
	if !list[1].SubmittedAt.Equal(success.SubmittedAt) {
		t.Errorf("timestamps differ: got %v want %v", list[1].SubmittedAt, success.SubmittedAt)
	}

	limited, err := s.ListLookups(ctx, 1)
	if err != nil {
		t.Fatalf("ListLookups failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected limit to apply, got %d rows", len(limited))
	}
}

func TestSQLiteObservations(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0).UTC()

	obs := []Observation{
		{City: "London", Location: "London", Country: "GB", ObservedAt: base, ConditionCode: 800,
			Description: "clear sky", Icon: "01d", Animation: "sun", TempC: 11, Humidity: 70,
			Sunrise: base.Add(-time.Hour), Sunset: base.Add(time.Hour), IngestedAt: base},
		{City: "London", Location: "London", Country: "GB", ObservedAt: base.Add(10 * time.Minute), ConditionCode: 500,
			Description: "light rain", Icon: "10d", Animation: "rain", TempC: 10, Humidity: 80,
			Sunrise: base.Add(-time.Hour), Sunset: base.Add(time.Hour), IngestedAt: base.Add(10 * time.Minute)},
		{City: "Oslo", Location: "Oslo", Country: "NO", ObservedAt: base, ConditionCode: 600,
			Description: "snow", Icon: "13d", Animation: "snow", TempC: -3, Humidity: 90,
			Sunrise: base.Add(-time.Hour), Sunset: base.Add(time.Hour), IngestedAt: base},
	}
	if err := s.InsertObservations(ctx, obs); err != nil {
		t.Fatalf("InsertObservations failed: %v", err)
	}
	// Re-inserting the same key updates in place.
	if err := s.InsertObservations(ctx, obs[:1]); err != nil {
		t.Fatalf("InsertObservations (upsert) failed: %v", err)
	}

	last, err := s.LastObservations(ctx, []string{"London", "Oslo", "Lima"})
	if err != nil {
		t.Fatalf("LastObservations failed: %v", err)
	}
	if len(last) != 2 {
		t.Fatalf("expected 2 cities, got %d", len(last))
	}
	if !last["London"].ObservedAt.Equal(base.Add(10 * time.Minute)) {
		t.Errorf("unexpected last London observation %v", last["London"].ObservedAt)
	}
	if _, ok := last["Lima"]; ok {
		t.Error("Lima has no observations")
	}

	list, err := s.ListObservations(ctx, "London", 0)
	if err != nil {
		t.Fatalf("ListObservations failed: %v", err)
	}
	if len(list) != 2 || list[0].ConditionCode != 500 {
		t.Errorf("unexpected observations %+v", list)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()

	if _, err := Open(ctx, ""); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := Open(ctx, "mysql://nope"); err == nil {
		t.Error("expected unsupported scheme error")
	}

	store, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "open.db"))
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*SQLiteStore); !ok {
		t.Errorf("expected *SQLiteStore, got %T", store)
	}
}
