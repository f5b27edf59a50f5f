package session

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/weather"
)

// CookieName carries the session id in the browser.
const CookieName = "widget_session"

// Registry hands every browser session its own weather.Controller.
type Registry struct {
	controllers *Cache[string, weather.Controller]
	fetcher     weather.Fetcher
}

// NewRegistry builds a registry whose idle sessions expire after ttl.
func NewRegistry(ttl time.Duration, fetcher weather.Fetcher) *Registry {
	return &Registry{
		controllers: NewCache[string, weather.Controller](ttl),
		fetcher:     fetcher,
	}
}

// Open returns the controller for id. Unknown, expired or malformed ids get a
// fresh session; the returned id is the one the caller should persist.
func (r *Registry) Open(id string) (string, *weather.Controller) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	c, _ := r.controllers.GetOrCreate(id, func() *weather.Controller {
		return weather.NewController(r.fetcher)
	})
	return id, c
}

// Lookup returns the controller for an existing session.
func (r *Registry) Lookup(id string) (*weather.Controller, bool) {
	c := r.controllers.Get(id)
	return c, c != nil
}

// Len reports how many sessions are held.
func (r *Registry) Len() int {
	return r.controllers.Len()
}

// Run prunes expired sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.controllers.Prune(); n > 0 {
				log.Printf("pruned %d idle widget sessions", n)
			}
		}
	}
}
