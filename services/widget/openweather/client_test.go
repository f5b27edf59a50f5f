package openweather_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/openweather"
	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/weather"
)

const londonBody = `{
	"coord": {"lon": -0.13, "lat": 51.51},
	"weather": [{"id": 800, "main": "Clear", "description": "clear sky", "icon": "01d"}],
	"main": {"temp": 11.2, "feels_like": 10.1, "humidity": 71},
	"dt": 1700000000,
	"sys": {"country": "GB", "sunrise": 1699990000, "sunset": 1700020000},
	"name": "London",
	"cod": 200
}`

func newProvider(t *testing.T, handler http.HandlerFunc) *openweather.Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return openweather.New("secret", openweather.WithBaseURL(ts.URL+"/data/2.5/weather"))
}

func TestCurrentWeatherSuccess(t *testing.T) {
	var gotQuery map[string]string
	client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{"q": q.Get("q"), "appid": q.Get("appid"), "units": q.Get("units")}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(londonBody))
	})

	rec, err := client.CurrentWeather(context.Background(), "London")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery["q"] != "London" || gotQuery["appid"] != "secret" || gotQuery["units"] != "metric" {
		t.Errorf("unexpected query %v", gotQuery)
	}
	if rec.Location != "London" || rec.Country != "GB" {
		t.Errorf("unexpected location %q, %q", rec.Location, rec.Country)
	}
	if rec.Primary().Code != 800 || rec.Primary().Icon != "01d" {
		t.Errorf("unexpected condition %+v", rec.Primary())
	}
	if rec.Humidity != 71 || rec.TempC != 11.2 {
		t.Errorf("unexpected readings temp=%v humidity=%v", rec.TempC, rec.Humidity)
	}
	if got := weather.AnimationFor(rec); got != weather.AnimationSun {
		t.Errorf("expected sun, got %q", got)
	}
}

func TestCurrentWeatherForwardsEmptyCity(t *testing.T) {
	called := false
	client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := r.URL.Query()["q"]; !ok {
			t.Error("q parameter must be sent even when empty")
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"cod":"400","message":"Nothing to geocode"}`))
	})

	_, err := client.CurrentWeather(context.Background(), "")
	if !called {
		t.Fatal("empty city must still reach the provider")
	}
	var se *openweather.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestCurrentWeatherNotFound(t *testing.T) {
	client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	})

	_, err := client.CurrentWeather(context.Background(), "Atlantis")
	var se *openweather.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if strings.Contains(err.Error(), "city not found") {
		t.Error("provider error body must be discarded")
	}
	if f := weather.ClassifyError(err); f.Message != weather.MsgCityNotFound {
		t.Errorf("unexpected classification %+v", f)
	}
}

func TestCurrentWeatherUnauthorized(t *testing.T) {
	client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.CurrentWeather(context.Background(), "London")
	if f := weather.ClassifyError(err); f.Message != weather.MsgCityNotFound {
		t.Errorf("auth failures must surface as %q, got %+v", weather.MsgCityNotFound, f)
	}
}

func TestCurrentWeatherParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"not json", `<html>oops</html>`, ""},
		{"missing weather", `{"name":"X","dt":1,"sys":{"sunrise":0,"sunset":2},"main":{"temp":1,"humidity":2}}`, "weather"},
		{"empty weather", `{"name":"X","dt":1,"sys":{"sunrise":0,"sunset":2},"weather":[],"main":{"temp":1,"humidity":2}}`, "weather"},
		{"missing main", `{"name":"X","dt":1,"sys":{"sunrise":0,"sunset":2},"weather":[{"id":800}]}`, "main"},
		{"missing sys", `{"name":"X","dt":1,"weather":[{"id":800}],"main":{"temp":1,"humidity":2}}`, "sys"},
		{"missing condition id", `{"name":"X","dt":1,"sys":{"sunrise":0,"sunset":2},"weather":[{"icon":"01d"}],"main":{"temp":1,"humidity":2}}`, "weather[0].id"},
		{"humidity out of range", `{"name":"X","dt":1,"sys":{"sunrise":0,"sunset":2},"weather":[{"id":800}],"main":{"temp":1,"humidity":140}}`, "main.humidity"},
		{"wrong type", `{"name":"X","dt":"yesterday"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.CurrentWeather(context.Background(), "X")
			var pe *openweather.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T: %v", err, err)
			}
			if pe.Field != tt.field {
				t.Errorf("field = %q, want %q", pe.Field, tt.field)
			}
			if !errors.Is(err, weather.ErrMalformedResponse) {
				t.Error("parse errors must match weather.ErrMalformedResponse")
			}
			if f := weather.ClassifyError(err); f.Kind != weather.FailureParse {
				t.Errorf("unexpected classification %+v", f)
			}
		})
	}
}

func TestCurrentWeatherTransportErrorHidesKey(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := ts.URL
	ts.Close()

	client := openweather.New("top-secret", openweather.WithBaseURL(base))
	_, err := client.CurrentWeather(context.Background(), "London")
	var te *openweather.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
	if strings.Contains(err.Error(), "top-secret") {
		t.Errorf("error leaks the api key: %v", err)
	}
}

func TestCurrentWeatherHonoursCancellation(t *testing.T) {
	client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.CurrentWeather(ctx, "London")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRateLimitRejectsWhenContextEnds(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(londonBody))
	}))
	t.Cleanup(ts.Close)

	client := openweather.New("k", openweather.WithBaseURL(ts.URL), openweather.WithRateLimit(1, 1))
	if _, err := client.CurrentWeather(context.Background(), "London"); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.CurrentWeather(ctx, "London")
	var te *openweather.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected limiter to fail with *TransportError, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single upstream call, got %d", calls)
	}
}
