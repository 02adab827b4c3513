// Package server wires the chi router, middleware chain and handlers into
// the gateway's HTTP surface.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/GAkim/promo-gateway/internal/config"
	"github.com/GAkim/promo-gateway/internal/gatekeeper"
	"github.com/GAkim/promo-gateway/internal/seo"
	"github.com/GAkim/promo-gateway/internal/server/handlers"
	servermw "github.com/GAkim/promo-gateway/internal/server/middleware"
)

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	cfg    config.ServerConfig
	logger *zap.Logger
}

// Deps carries the wired application components the routes depend on.
type Deps struct {
	Gatekeeper *gatekeeper.Gatekeeper
	Site       *seo.Site
	Health     *handlers.HealthManager
	Throttle   config.ThrottleConfig
	Logger     *zap.Logger
}

// New creates a new HTTP server instance
func New(cfg config.ServerConfig, deps Deps) *Server {
	r := chi.NewRouter()

	// Middleware order: client address first, then correlation, then the
	// outermost panic recovery.
	r.Use(chimw.RealIP)
	r.Use(servermw.RequestID)
	r.Use(servermw.Recovery(deps.Logger))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeNotFound(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeMethodNotAllowed(w)
	})

	s := &Server{
		router: r,
		cfg:    cfg,
		logger: deps.Logger,
	}

	// Route all handler errors through the centralized responder.
	handlers.SetErrorResponder(handlers.RespondWithError)

	s.registerRoutes(deps)

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  orDuration(s.cfg.ReadTimeout, 30*time.Second),
		WriteTimeout: orDuration(s.cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:  orDuration(s.cfg.IdleTimeout, 120*time.Second),
	}

	if s.logger != nil {
		s.logger.Info("Starting HTTP server",
			zap.String("addr", addr))
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Info("Shutting down HTTP server")
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for testing and instrumentation
func (s *Server) Handler() http.Handler {
	return s.router
}

func orDuration(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

func writeNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"error":"The requested resource was not found"}` + "\n"))
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	_, _ = w.Write([]byte(`{"error":"The requested method is not allowed for this resource"}` + "\n"))
}
