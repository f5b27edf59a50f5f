package weather

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoConditions is returned when a record carries an empty condition list.
var ErrNoConditions = errors.New("weather record has no conditions")

// Condition is one entry of the provider's condition list.
type Condition struct {
	Code        int    `json:"id"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Record is the current weather for one location.
type Record struct {
	Location   string      `json:"name"`
	Country    string      `json:"country"`
	Sunrise    int64       `json:"sunrise"`
	Sunset     int64       `json:"sunset"`
	ObservedAt int64       `json:"dt"`
	Conditions []Condition `json:"weather"`
	TempC      float64     `json:"temp"`
	Humidity   int         `json:"humidity"`
}

// Validate checks the invariants every record handed to the view layer must hold.
func (r Record) Validate() error {
	if len(r.Conditions) == 0 {
		return ErrNoConditions
	}
	if r.Humidity < 0 || r.Humidity > 100 {
		return fmt.Errorf("humidity %d out of range", r.Humidity)
	}
	return nil
}

// Primary returns the first condition. Only the first one is ever displayed.
func (r Record) Primary() Condition {
	if len(r.Conditions) == 0 {
		return Condition{}
	}
	return r.Conditions[0]
}

// Observed returns the observation time in UTC.
func (r Record) Observed() time.Time {
	return time.Unix(r.ObservedAt, 0).UTC()
}
