// Package server is the HTTP API around the session tracker.
package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/fitcount/internal/metrics"
	"github.com/claude/fitcount/internal/sessionlog"
	"github.com/claude/fitcount/internal/tracker"
	"github.com/claude/fitcount/internal/workout"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"tailscale.com/client/local"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	tracker     *tracker.Tracker
	history     sessionlog.History
	defaultPlan []workout.PlanItem
	log         *slog.Logger
	apiKey      string
	router      chi.Router
	mcp         http.Handler
	ts          *local.Client
	metrics     *metrics.Metrics
	registry    *prometheus.Registry
}

// New creates a new Server with all routes configured. history may be nil,
// in which case the history endpoints answer 503.
func New(tr *tracker.Tracker, history sessionlog.History, defaultPlan []workout.PlanItem, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		tracker:     tr,
		history:     history,
		defaultPlan: defaultPlan,
		log:         log,
		apiKey:      apiKey,
		router:      chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(s.requestMetrics)
	s.router.Use(CORS)
	s.router.Use(s.identify)

	// Session control (API key required)
	s.router.Route("/api/v1/session", func(r chi.Router) {
		r.Get("/", s.handleGetSession)
		r.Get("/events", s.handleSessionEvents)

		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/", s.handleStartSession)
			r.Post("/frames", s.handleFrame)
			r.Post("/next-set", s.handleNextSet)
			r.Post("/next-exercise", s.handleNextExercise)
			r.Post("/end", s.handleEndSession)
		})
	})

	// Read-only endpoints (no auth, tsnet handles access)
	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Get("/api/v1/exercises", s.handleExercises)
	s.router.Get("/api/v1/sets", s.handleQuerySets)
	s.router.Get("/api/v1/sessions", s.handleRecentSessions)
	s.router.Get("/api/v1/sets/chart", s.handleSetsChart)
	s.router.Get("/metrics", s.handleMetrics)

	s.router.Handle("/mcp", http.HandlerFunc(s.handleMCP))
}

// SetMCP mounts the MCP streamable HTTP handler at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.mcp = h
}

// SetTailscale enables tailnet identity lookup for incoming requests.
func (s *Server) SetTailscale(lc *local.Client) {
	s.ts = lc
}

// SetMetrics enables request instrumentation and serves reg at /metrics.
func (s *Server) SetMetrics(reg *prometheus.Registry, m *metrics.Metrics) {
	s.registry = reg
	s.metrics = m
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "metrics not enabled"})
		return
	}
	promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	if s.mcp == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "mcp not enabled"})
		return
	}
	s.mcp.ServeHTTP(w, r)
}
