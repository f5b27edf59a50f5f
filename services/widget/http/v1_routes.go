package http

import "github.com/gin-gonic/gin"

// registerV1Routes sets up the JSON API under /api/v1.
func (s *Server) registerV1Routes() {
	v1 := s.engine.Group("/api/v1")
	v1.Use(corsMiddleware())
	v1.Use(apiVersionMiddleware())
	if s.cfg.BearerToken != "" {
		v1.Use(bearerAuthMiddleware(s.cfg.BearerToken))
	}

	// Stateless and per-session lookups
	v1.GET("/weather", s.handleV1Weather)
	v1.GET("/session", s.handleV1Session)

	// Journal
	v1.GET("/lookups", s.handleV1ListLookups)
	v1.GET("/observations/:city", s.handleV1ListObservations)
}

func apiVersionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-API-Version", "v1")
		c.Next()
	}
}
