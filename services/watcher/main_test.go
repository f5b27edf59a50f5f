package main

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/weather"
)

type mapFetcher map[string]weather.Record

func (m mapFetcher) CurrentWeather(ctx context.Context, city string) (weather.Record, error) {
	if err := ctx.Err(); err != nil {
		return weather.Record{}, err
	}
	r, ok := m[city]
	if !ok {
		return weather.Record{}, errors.New("unexpected status 404 Not Found")
	}
	return r, nil
}

func rec(name string, code int) weather.Record {
	return weather.Record{
		Location:   name,
		Country:    "XX",
		Sunrise:    1000,
		Sunset:     5000,
		ObservedAt: 3000,
		Conditions: []weather.Condition{{Code: code, Description: "test", Icon: "01d"}},
		TempC:      10,
		Humidity:   50,
	}
}

func TestFetchAllSkipsFailedCities(t *testing.T) {
	f := mapFetcher{
		"Oslo":  rec("Oslo", 601),
		"Paris": rec("Paris", 500),
		"Empty": {Location: "Empty", Humidity: 10},
	}
	now := time.Now().UTC()

	obs, err := fetchAll(context.Background(), f, []string{"Oslo", "Atlantis", "Paris", "Empty"}, 2, now)
	if err != nil {
		t.Fatalf("fetchAll failed: %v", err)
	}

	sort.Slice(obs, func(i, j int) bool { return obs[i].City < obs[j].City })
	if len(obs) != 2 || obs[0].City != "Oslo" || obs[1].City != "Paris" {
		t.Fatalf("unexpected observations: %+v", obs)
	}
	if obs[0].Animation != "snow" || obs[1].Animation != "rain" {
		t.Fatalf("unexpected animations: %s %s", obs[0].Animation, obs[1].Animation)
	}
	if !obs[0].IngestedAt.Equal(now) {
		t.Fatalf("ingest time not propagated")
	}
}

func TestFetchAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := fetchAll(ctx, mapFetcher{"Oslo": rec("Oslo", 800)}, []string{"Oslo"}, 1, time.Now()); err == nil {
		t.Fatalf("expected error for cancelled run")
	}
}
