package main

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/02loveslollipop/Shizuku-weather-widget/services/watcher/internal/config"
	"github.com/02loveslollipop/Shizuku-weather-widget/services/watcher/internal/utils"
	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/db"
	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/openweather"
	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/weather"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("watcher failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Every city may wait on the rate limiter, so budget for the whole batch.
	budget := time.Duration(len(cfg.Cities)+1)*cfg.RequestTimeout + 10*time.Second
	ctx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()

	client := openweather.New(cfg.APIKey,
		openweather.WithBaseURL(cfg.BaseURL),
		openweather.WithTimeout(cfg.RequestTimeout),
		openweather.WithRateLimit(cfg.RatePerMinute, cfg.Concurrency),
	)
	ingestedAt := time.Now().UTC().Truncate(time.Second)

	candidates, err := fetchAll(ctx, client, cfg.Cities, cfg.Concurrency, ingestedAt)
	if err != nil {
		return err
	}
	log.Printf("fetched %d of %d cities", len(candidates), len(cfg.Cities))

	store, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	lastMap, err := store.LastObservations(ctx, utils.Cities(candidates))
	if err != nil {
		return err
	}

	pending := utils.FilterNewObservations(candidates, lastMap, cfg.MinInterval)
	if len(pending) == 0 {
		log.Printf("no new observations to insert (ingest=%s)", ingestedAt.Format(time.RFC3339))
		return nil
	}

	log.Printf("prepared %d new observations (dry-run=%v)", len(pending), cfg.DryRun)

	if cfg.DryRun {
		for _, o := range pending {
			log.Printf("dry-run: would insert %s", utils.Describe(o))
		}
		return nil
	}

	if err := store.InsertObservations(ctx, pending); err != nil {
		return err
	}

	log.Printf("inserted %d observations", len(pending))
	return nil
}

// fetchAll looks up every city with at most limit requests in flight. A city
// whose lookup fails is logged and skipped; only a cancelled run is an error.
func fetchAll(ctx context.Context, f weather.Fetcher, cities []string, limit int, ingestedAt time.Time) ([]db.Observation, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	out := make([]db.Observation, 0, len(cities))

	for _, city := range cities {
		city := city
		g.Go(func() error {
			rec, err := f.CurrentWeather(gctx, city)
			if err == nil {
				err = rec.Validate()
			}
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Printf("skip city=%q: %v", city, err)
				return nil
			}

			mu.Lock()
			out = append(out, utils.BuildObservation(city, rec, ingestedAt))
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
