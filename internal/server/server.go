// Package server exposes a running simulation over HTTP and WebSocket so that
// browser maps and remote radars can poll the feed.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/unklstewy/mockflights/internal/feedpump"
	"github.com/unklstewy/mockflights/pkg/config"
	"github.com/unklstewy/mockflights/pkg/flightsim"
)

// Simulation is the part of *flightsim.Simulation the server needs.
type Simulation interface {
	feedpump.Source
	Status() flightsim.Status
}

// Server holds the HTTP router and its dependencies.
type Server struct {
	router   *chi.Mux
	sim      Simulation
	feed     config.FeedConfig
	origins  []string
	upgrader websocket.Upgrader
	logger   *zap.Logger

	// closing is cancelled by Close to end hijacked WebSocket streams,
	// which http.Server.Shutdown does not track
	closing context.Context
	close   context.CancelFunc
}

// New builds the router for sim.
func New(sim Simulation, cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:  chi.NewRouter(),
		sim:     sim,
		feed:    cfg.Feed,
		origins: cfg.Server.AllowedOrigins,
		logger:  logger,
	}
	s.closing, s.close = context.WithCancel(context.Background())
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close ends all WebSocket streams.
func (s *Server) Close() {
	s.close()
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	r := s.router

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	// CORS for browser map clients
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", handleHealth)
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/flight", s.handleNextFlight)
		r.Get("/flights", s.handleFlights)
		r.Get("/status", s.handleStatus)
	})
}

// handleHealth provides a health check endpoint for container orchestration.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleNextFlight pops one snapshot in the raw feed layout.
// An empty feed is 204, which pollers treat as "try again next frame".
func (s *Server) handleNextFlight(w http.ResponseWriter, r *http.Request) {
	line, ok := s.sim.NextFlight()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(line))
}

// handleFlights pops up to ?max= snapshots and returns them parsed.
func (s *Server) handleFlights(w http.ResponseWriter, r *http.Request) {
	limit := s.feed.BatchSize
	if raw := r.URL.Query().Get("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "max must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, s.feed.MaxBatchSize)
	}

	reports := feedpump.DrainN(s.sim, limit, s.logger)
	respondJSON(w, http.StatusOK, reports)
}

// handleStatus reports the simulation state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.sim.Status())
}

// checkOrigin applies the CORS origin list to WebSocket upgrades.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.origins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// requestLogger logs every request at debug level; feed polling is too chatty
// for info.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("remote", r.RemoteAddr),
			)
		})
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
