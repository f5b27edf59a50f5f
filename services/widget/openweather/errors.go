package openweather

import (
	"fmt"

	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/weather"
)

// StatusError is returned when the provider answers with a non-2xx status.
// The provider's error body is not kept.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %s", e.Status)
}

// TransportError wraps failures that happen before a response is read:
// rate limiter waits, DNS, connection and timeout errors.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request current weather: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a body that is not valid JSON or lacks a required field.
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		if e.Err != nil {
			return fmt.Sprintf("decode payload: field %s: %v", e.Field, e.Err)
		}
		return fmt.Sprintf("decode payload: missing field %s", e.Field)
	}
	return fmt.Sprintf("decode payload: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is lets callers match any ParseError with weather.ErrMalformedResponse.
func (e *ParseError) Is(target error) bool {
	return target == weather.ErrMalformedResponse
}
