package utils

import (
	"fmt"
	"time"

	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/db"
	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/weather"
)

// BuildObservation converts a provider record into a database-ready row.
// city is the configured query, which may differ from the provider's name.
func BuildObservation(city string, r weather.Record, ingestedAt time.Time) db.Observation {
	cond := r.Primary()
	return db.Observation{
		City:          city,
		Location:      r.Location,
		Country:       r.Country,
		ObservedAt:    r.Observed(),
		ConditionCode: cond.Code,
		Description:   cond.Description,
		Icon:          cond.Icon,
		Animation:     string(weather.AnimationFor(r)),
		TempC:         r.TempC,
		Humidity:      r.Humidity,
		Sunrise:       time.Unix(r.Sunrise, 0).UTC(),
		Sunset:        time.Unix(r.Sunset, 0).UTC(),
		IngestedAt:    ingestedAt,
	}
}

// Cities extracts the city keys from observations.
func Cities(obs []db.Observation) []string {
	ids := make([]string, 0, len(obs))
	for _, o := range obs {
		ids = append(ids, o.City)
	}
	return ids
}

// FilterNewObservations selects candidates that should be written: cities
// with no stored reading, readings with a new provider timestamp, and repeats
// of the same reading once minInterval has passed since the last ingest.
func FilterNewObservations(
	candidates []db.Observation,
	last map[string]db.LastObservation,
	minInterval time.Duration,
) []db.Observation {
	out := make([]db.Observation, 0, len(candidates))
	for _, cand := range candidates {
		prev, ok := last[cand.City]
		if !ok {
			out = append(out, cand)
			continue
		}

		if !cand.ObservedAt.Equal(prev.ObservedAt) {
			out = append(out, cand)
			continue
		}

		if cand.IngestedAt.Sub(prev.IngestedAt) >= minInterval {
			out = append(out, cand)
		}
	}
	return out
}

// Describe prints an observation for logging.
func Describe(o db.Observation) string {
	return fmt.Sprintf("city=%s dt=%s code=%d temp=%.1fC humidity=%d%% animation=%s",
		o.City, o.ObservedAt.Format(time.RFC3339), o.ConditionCode, o.TempC, o.Humidity, o.Animation)
}
