package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/db"
	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/weather"
)

func TestBuildObservation(t *testing.T) {
	rec := weather.Record{
		Location:   "London",
		Country:    "GB",
		Sunrise:    1700000000,
		Sunset:     1700030000,
		ObservedAt: 1700040000,
		Conditions: []weather.Condition{{Code: 800, Description: "clear sky", Icon: "01n"}},
		TempC:      8.5,
		Humidity:   80,
	}
	now := time.Date(2023, 11, 15, 0, 0, 0, 0, time.UTC)

	obs := BuildObservation("london", rec, now)
	if obs.City != "london" || obs.Location != "London" {
		t.Fatalf("unexpected identity: %+v", obs)
	}
	if obs.Animation != "night" {
		t.Fatalf("expected night animation, got %s", obs.Animation)
	}
	if !obs.ObservedAt.Equal(time.Unix(1700040000, 0)) || obs.ObservedAt.Location() != time.UTC {
		t.Fatalf("unexpected observed time: %v", obs.ObservedAt)
	}
	if !strings.Contains(Describe(obs), "city=london") {
		t.Fatalf("unexpected description: %s", Describe(obs))
	}
}

func TestFilterNewObservations(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ingest := base.Add(20 * time.Minute)

	candidates := []db.Observation{
		{City: "Fresh", ObservedAt: base, IngestedAt: ingest},
		{City: "Advanced", ObservedAt: base.Add(10 * time.Minute), IngestedAt: ingest},
		{City: "Same", ObservedAt: base, IngestedAt: ingest},
		{City: "Stale", ObservedAt: base, IngestedAt: ingest},
	}
	last := map[string]db.LastObservation{
		"Advanced": {ObservedAt: base, IngestedAt: ingest.Add(-time.Minute)},
		"Same":     {ObservedAt: base, IngestedAt: ingest.Add(-5 * time.Minute)},
		"Stale":    {ObservedAt: base, IngestedAt: ingest.Add(-15 * time.Minute)},
	}

	got := FilterNewObservations(candidates, last, 10*time.Minute)
	cities := Cities(got)
	want := []string{"Fresh", "Advanced", "Stale"}
	if len(cities) != len(want) {
		t.Fatalf("expected %v, got %v", want, cities)
	}
	for i := range want {
		if cities[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, cities)
		}
	}
}
