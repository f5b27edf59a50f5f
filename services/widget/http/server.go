package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/config"
	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/db"
	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/session"
	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/weather"
)

// Server bundles router and dependencies for the widget.
type Server struct {
	cfg      config.Config
	store    db.Store
	provider weather.Fetcher
	sessions *session.Registry
	icons    weather.IconResolver
	render   *renderer
	engine   *gin.Engine
}

// New constructs a server with routes and middleware. store may be nil, in
// which case the journal endpoints answer 503 and lookups are not recorded.
func New(cfg config.Config, store db.Store, provider weather.Fetcher) (*Server, error) {
	r, err := newRenderer()
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())
	engine.Use(tracingMiddleware(otel.Tracer("github.com/02loveslollipop/Shizuku-weather-widget/http")))

	provider = loggingFetcher{next: provider}
	server := &Server{
		cfg:      cfg,
		store:    store,
		provider: provider,
		sessions: session.NewRegistry(cfg.SessionTTL, provider),
		icons:    weather.IconURL(cfg.IconBaseURL),
		render:   r,
		engine:   engine,
	}
	server.registerRoutes()
	server.registerV1Routes()
	return server, nil
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Sessions exposes the session registry so main can run its pruner.
func (s *Server) Sessions() *session.Registry {
	return s.sessions
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.engine.GET("/", s.handleWidget)
	s.engine.POST("/", s.handleSubmit)
}

func bearerAuthMiddleware(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if token != expected {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func tracingMiddleware(tracer trace.Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+c.FullPath(), trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
		span.SetAttributes(attribute.Int("http.status_code", c.Writer.Status()))
	}
}

// loggingFetcher logs provider errors before they are collapsed into the
// user-facing failure message.
type loggingFetcher struct {
	next weather.Fetcher
}

func (f loggingFetcher) CurrentWeather(ctx context.Context, city string) (weather.Record, error) {
	rec, err := f.next.CurrentWeather(ctx, city)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("provider lookup city=%q failed: %v", city, err)
	}
	return rec, err
}
