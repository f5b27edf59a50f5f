package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/config"
	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/db"
	httpserver "github.com/02loveslollipop/Shizuku-weather-widget/services/widget/http"
	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/openweather"
	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := tracing.Setup("weather-widget", cfg.ZipkinEndpoint)
	if err != nil {
		log.Fatalf("tracing error: %v", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	if cfg.APIKey == "" {
		log.Println("warning: OPENWEATHER_API_KEY is not set, every lookup will fail")
	}

	var store db.Store
	if cfg.DatabaseURL != "" {
		store, err = db.Open(ctx, cfg.DatabaseURL)
		if err != nil && !errors.Is(err, db.ErrNotConfigured) {
			log.Fatalf("db connection error: %v", err)
		}
		if store != nil {
			defer store.Close()
		}
	}

	provider := openweather.New(cfg.APIKey,
		openweather.WithBaseURL(cfg.BaseURL),
		openweather.WithTimeout(cfg.RequestTimeout),
		openweather.WithRateLimit(cfg.RatePerMinute, 5),
	)

	srv, err := httpserver.New(cfg, store, provider)
	if err != nil {
		log.Fatalf("server setup error: %v", err)
	}
	go srv.Sessions().Run(ctx, time.Minute)

	log.Printf("weather widget listening on %s (journal=%v)", cfg.ListenAddr(), store != nil)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
