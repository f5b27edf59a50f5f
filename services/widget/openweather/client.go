package openweather

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/weather"
)

const (
	// DefaultBaseURL is the current weather endpoint.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

	units = "metric"
)

// Client fetches current conditions from OpenWeatherMap.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	tracer  trace.Tracer
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the underlying http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = &http.Client{Timeout: d}
	}
}

// WithRateLimit caps outgoing calls at perMinute, allowing bursts of burst.
// perMinute <= 0 disables throttling.
func WithRateLimit(perMinute, burst int) Option {
	return func(c *Client) {
		if perMinute <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
	}
}

// New builds a client. An empty apiKey is allowed; the provider then rejects
// every call and the widget reports it like any other failed lookup.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		tracer:  otel.Tracer("github.com/02loveslollipop/Shizuku-weather-widget/openweather"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentWeather issues one GET for city. There are no retries.
func (c *Client) CurrentWeather(ctx context.Context, city string) (weather.Record, error) {
	ctx, span := c.tracer.Start(ctx, "openweather.current",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("weather.city", city)),
	)
	defer span.End()

	rec, err := c.currentWeather(ctx, city)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return weather.Record{}, err
	}
	span.SetAttributes(
		attribute.Int("weather.condition_code", rec.Primary().Code),
		attribute.String("weather.location", rec.Location),
	)
	return rec, nil
}

func (c *Client) currentWeather(ctx context.Context, city string) (weather.Record, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return weather.Record{}, &TransportError{Err: err}
		}
	}

	endpoint, err := c.requestURL(city)
	if err != nil {
		return weather.Record{}, &TransportError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return weather.Record{}, &TransportError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return weather.Record{}, &TransportError{Err: redact(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return weather.Record{}, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	return decodeCurrent(resp.Body)
}

func (c *Client) requestURL(city string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", units)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// redact drops the query string (which carries the API key) from url errors.
func redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		if u, perr := url.Parse(ue.URL); perr == nil {
			u.RawQuery = ""
			return &url.Error{Op: ue.Op, URL: u.String(), Err: ue.Err}
		}
	}
	return err
}
