package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/db"
	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/session"
	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/weather"
)

// handleV1Weather runs a lookup without touching any session.
// GET /api/v1/weather?q=London
func (s *Server) handleV1Weather(c *gin.Context) {
	city := c.Query("q")

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout+time.Second)
	defer cancel()

	rec, err := s.provider.CurrentWeather(ctx, city)
	out := weather.OutcomeOf(rec, err)
	view := weather.Derive(out, s.icons)

	if f, ok := out.Failure(); ok {
		status := http.StatusNotFound
		if f.Kind == weather.FailureParse {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": f.Message, "kind": f.Kind})
		return
	}

	record, _ := out.Record()
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"record": record,
			"view":   view,
		},
	})
}

// handleV1Session returns the caller's session outcome and derived view.
// GET /api/v1/session
func (s *Server) handleV1Session(c *gin.Context) {
	id, _ := c.Cookie(session.CookieName)
	ctrl, ok := s.sessions.Lookup(id)
	if !ok {
		idle := weather.Idle()
		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{
				"city":    "",
				"outcome": idle,
				"view":    weather.Derive(idle, s.icons),
			},
		})
		return
	}

	snap := ctrl.Current()
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"city":    snap.City,
			"outcome": snap.Outcome,
			"view":    weather.Derive(snap.Outcome, s.icons),
		},
	})
}

// handleV1ListLookups returns recent journal entries, newest first.
// GET /api/v1/lookups?limit=50
func (s *Server) handleV1ListLookups(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": db.ErrNotConfigured.Error()})
		return
	}

	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	lookups, err := s.store.ListLookups(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": lookups,
		"meta": gin.H{
			"count": len(lookups),
		},
	})
}

// handleV1ListObservations returns watcher readings for one city.
// GET /api/v1/observations/:city?limit=24
func (s *Server) handleV1ListObservations(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": db.ErrNotConfigured.Error()})
		return
	}

	city := c.Param("city")
	if city == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "city is required"})
		return
	}

	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	obs, err := s.store.ListObservations(ctx, city, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if len(obs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no observations for city"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": obs,
		"meta": gin.H{
			"city":  city,
			"count": len(obs),
		},
	})
}

// parseLimit accepts an empty value (store default) or a positive integer.
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}
