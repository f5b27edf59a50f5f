package openweather

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/weather"
)

// currentResponse models the subset of the /data/2.5/weather payload the
// widget reads. Pointers mark fields that must be present.
type currentResponse struct {
	Name    *string        `json:"name"`
	Dt      *int64         `json:"dt"`
	Sys     *sysInfo       `json:"sys"`
	Weather []conditionDTO `json:"weather"`
	Main    *mainInfo      `json:"main"`
}

type sysInfo struct {
	Country string `json:"country"`
	Sunrise *int64 `json:"sunrise"`
	Sunset  *int64 `json:"sunset"`
}

type conditionDTO struct {
	ID          *int   `json:"id"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type mainInfo struct {
	Temp     *float64 `json:"temp"`
	Humidity *int     `json:"humidity"`
}

// decodeCurrent parses a provider body into a validated record.
func decodeCurrent(r io.Reader) (weather.Record, error) {
	var payload currentResponse
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return weather.Record{}, &ParseError{Err: err}
	}
	return payload.toRecord()
}

func (p currentResponse) toRecord() (weather.Record, error) {
	switch {
	case p.Name == nil:
		return weather.Record{}, &ParseError{Field: "name"}
	case p.Dt == nil:
		return weather.Record{}, &ParseError{Field: "dt"}
	case p.Sys == nil:
		return weather.Record{}, &ParseError{Field: "sys"}
	case p.Sys.Sunrise == nil:
		return weather.Record{}, &ParseError{Field: "sys.sunrise"}
	case p.Sys.Sunset == nil:
		return weather.Record{}, &ParseError{Field: "sys.sunset"}
	case len(p.Weather) == 0:
		return weather.Record{}, &ParseError{Field: "weather", Err: weather.ErrNoConditions}
	case p.Main == nil:
		return weather.Record{}, &ParseError{Field: "main"}
	case p.Main.Temp == nil:
		return weather.Record{}, &ParseError{Field: "main.temp"}
	case p.Main.Humidity == nil:
		return weather.Record{}, &ParseError{Field: "main.humidity"}
	}

	conditions := make([]weather.Condition, 0, len(p.Weather))
	for i, c := range p.Weather {
		if c.ID == nil {
			return weather.Record{}, &ParseError{Field: fmt.Sprintf("weather[%d].id", i)}
		}
		conditions = append(conditions, weather.Condition{
			Code:        *c.ID,
			Description: c.Description,
			Icon:        c.Icon,
		})
	}

	rec := weather.Record{
		Location:   *p.Name,
		Country:    p.Sys.Country,
		Sunrise:    *p.Sys.Sunrise,
		Sunset:     *p.Sys.Sunset,
		ObservedAt: *p.Dt,
		Conditions: conditions,
		TempC:      *p.Main.Temp,
		Humidity:   *p.Main.Humidity,
	}
	if err := rec.Validate(); err != nil {
		return weather.Record{}, &ParseError{Field: "main.humidity", Err: err}
	}
	return rec, nil
}
