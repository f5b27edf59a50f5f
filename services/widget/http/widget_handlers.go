package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/db"
	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/session"
	"github.com/02loveslollipop/Shizuku-weather-widget/services/widget/weather"
)

// handleWidget renders the session's current outcome. Rendering does not
// touch the outcome, so reloads are stable.
// GET /
func (s *Server) handleWidget(c *gin.Context) {
	ctrl := s.openSession(c)
	s.render.page(c, http.StatusOK, s.pageFor(ctrl.Current()))
}

// handleSubmit runs one lookup for the posted city and renders the result.
// POST / (form field "city")
func (s *Server) handleSubmit(c *gin.Context) {
	ctrl := s.openSession(c)
	city := c.PostForm("city")

	submittedAt := time.Now().UTC()
	out, applied := ctrl.Submit(c.Request.Context(), city)
	if !applied {
		log.Printf("discarded stale lookup city=%q", city)
	}
	s.journal(city, out, applied, submittedAt)

	s.render.page(c, http.StatusOK, s.pageFor(ctrl.Current()))
}

func (s *Server) openSession(c *gin.Context) *weather.Controller {
	id, _ := c.Cookie(session.CookieName)
	newID, ctrl := s.sessions.Open(id)
	if newID != id {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(session.CookieName, newID, int(s.cfg.SessionTTL.Seconds()), "/", "", false, true)
	}
	return ctrl
}

func (s *Server) pageFor(snap weather.Snapshot) pageData {
	return pageData{
		Title: pageTitle,
		City:  snap.City,
		View:  weather.Derive(snap.Outcome, s.icons),
	}
}

// journal records a resolved submission. Failures are logged, never shown.
func (s *Server) journal(city string, out weather.Outcome, applied bool, at time.Time) {
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.SaveLookup(ctx, lookupFor(city, out, applied, at)); err != nil {
		log.Println("warning: failed to persist lookup:", err)
	}
}

func lookupFor(city string, out weather.Outcome, applied bool, at time.Time) db.Lookup {
	l := db.Lookup{
		City:        city,
		Outcome:     out.Kind().String(),
		Applied:     applied,
		SubmittedAt: at,
	}
	if f, ok := out.Failure(); ok {
		kind := string(f.Kind)
		msg := f.Message
		l.FailureKind = &kind
		l.Message = &msg
	}
	if r, ok := out.Record(); ok {
		cond := r.Primary()
		animation := string(weather.AnimationFor(r))
		temp := r.TempC
		humidity := r.Humidity
		l.Location = &r.Location
		l.Country = &r.Country
		l.ConditionCode = &cond.Code
		l.Animation = &animation
		l.TempC = &temp
		l.Humidity = &humidity
	}
	return l
}
