package server

import (
	"github.com/go-chi/chi/v5"

	"github.com/GAkim/promo-gateway/internal/server/handlers"
	servermw "github.com/GAkim/promo-gateway/internal/server/middleware"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes(deps Deps) {
	// Health endpoints
	if deps.Health != nil {
		s.router.Get("/health", deps.Health.HealthHandler)
		s.router.Get("/health/live", deps.Health.LivenessHandler)
		s.router.Get("/health/ready", deps.Health.ReadinessHandler)
	}

	// Version endpoint
	s.router.Get("/version", handlers.VersionHandler)

	// SEO metadata for the frontend
	if deps.Site != nil {
		seoHandler := &handlers.SEOHandler{Site: deps.Site}
		s.router.Get("/api/seo/meta", seoHandler.Meta)
	}

	// Contact endpoint behind the flood throttle
	contact := &handlers.ContactHandler{
		Gatekeeper: deps.Gatekeeper,
		Logger:     deps.Logger,
	}
	s.router.Group(func(r chi.Router) {
		if deps.Throttle.Enabled {
			r.Use(servermw.Throttle(deps.Throttle.RPS, deps.Throttle.Burst))
		}
		r.Post("/api/contact", contact.ServeHTTP)
	})
}
