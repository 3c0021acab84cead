// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"concierge/internal/http/handlers"
	"concierge/internal/http/middleware"
	"concierge/internal/modules/location"
	"concierge/internal/modules/ride"
)

type ServerDeps struct {
	Voice    *handlers.VoiceHandler
	Location *location.Service
	Ride     *ride.Service
}

type Server struct {
	voice    *handlers.VoiceHandler
	location *location.Service
	ride     *ride.Service
}

func NewServer(deps ServerDeps) *Server {
	return &Server{
		voice:    deps.Voice,
		location: deps.Location,
		ride:     deps.Ride,
	}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery(), middleware.Auth())

	voice := s.voice
	r.POST("/api/voice/sessions", voice.Start)
	r.GET("/api/voice/sessions/:id", voice.Get)
	r.POST("/api/voice/sessions/:id/transcript", voice.Transcript)
	r.POST("/api/voice/sessions/:id/back", voice.Back)
	r.POST("/api/voice/sessions/:id/confirm", voice.Confirm)
	r.POST("/api/voice/sessions/:id/reset", voice.Reset)

	locationHandler := handlers.NewLocationHandler(s.location)
	r.GET("/api/locations", locationHandler.List)

	rideHandler := handlers.NewRideHandler(s.ride)
	r.GET("/api/rides/:id", rideHandler.Get)
	r.POST("/api/rides/:id/cancel", rideHandler.Cancel)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
