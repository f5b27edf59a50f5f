package weather

import (
	"context"
	"errors"
	"sync"
)

// ErrMalformedResponse is matched (via errors.Is) by provider errors caused by
// a payload that does not have the expected shape.
var ErrMalformedResponse = errors.New("malformed provider response")

// Fetcher retrieves the current weather for a city.
type Fetcher interface {
	CurrentWeather(ctx context.Context, city string) (Record, error)
}

// ClassifyError maps a Fetcher error to the failure shown to the user. Every
// request-level problem (bad status, unreachable provider, cancelled request)
// collapses into the same message; only malformed payloads are told apart.
func ClassifyError(err error) Failure {
	if errors.Is(err, ErrMalformedResponse) {
		return Failure{Kind: FailureParse, Message: MsgUnexpectedResponse}
	}
	return Failure{Kind: FailureRequest, Message: MsgCityNotFound}
}

// OutcomeOf converts a Fetcher result into an Outcome.
func OutcomeOf(r Record, err error) Outcome {
	if err != nil {
		f := ClassifyError(err)
		return Fail(f.Kind, f.Message)
	}
	if verr := r.Validate(); verr != nil {
		return Fail(FailureParse, MsgUnexpectedResponse)
	}
	return Success(r)
}

// Snapshot is the state a Controller currently exposes.
type Snapshot struct {
	City    string  `json:"city"`
	Outcome Outcome `json:"outcome"`
	Seq     uint64  `json:"seq"`
}

// Controller owns a single outcome slot and the submissions that replace it.
// Each submission takes a sequence token and cancels the previous in-flight
// request; a result only lands if its token is still the latest.
type Controller struct {
	fetcher Fetcher

	mu      sync.Mutex
	seq     uint64
	cancel  context.CancelFunc
	city    string
	outcome Outcome
}

// NewController returns a controller in the Idle state.
func NewController(f Fetcher) *Controller {
	return &Controller{fetcher: f}
}

// Submit runs one lookup for city. The returned outcome is the one this
// submission produced; applied reports whether it replaced the controller's
// state or was discarded because a newer submission started meanwhile.
func (c *Controller) Submit(ctx context.Context, city string) (out Outcome, applied bool) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	if c.cancel != nil {
		c.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.city = city
	c.outcome = Idle()
	c.mu.Unlock()
	defer cancel()

	rec, err := c.fetcher.CurrentWeather(reqCtx, city)
	out = OutcomeOf(rec, err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return out, false
	}
	c.cancel = nil
	c.outcome = out
	return out, true
}

// Current returns the latest applied state.
func (c *Controller) Current() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{City: c.city, Outcome: c.outcome, Seq: c.seq}
}
