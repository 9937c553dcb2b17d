// Package api provides the HTTP server for the stargazing platform.
// It is a thin layer: request parsing and status mapping live here, every
// rule lives in the engines underneath.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appvisits "github.com/singularity-sky/singularity/internal/app/visits"
	"github.com/singularity-sky/singularity/internal/domain"
	"github.com/singularity-sky/singularity/internal/gamification"
	"github.com/singularity-sky/singularity/internal/metrics"
)

// Server is the HTTP API server.
type Server struct {
	sites  domain.SiteStore
	events domain.EventStore
	ledger *gamification.Ledger
	visits *appvisits.Service

	metricsEnabled bool
	corsEnabled    bool
}

// NewServer wires the API over the stores and services.
func NewServer(sites domain.SiteStore, events domain.EventStore, ledger *gamification.Ledger, visits *appvisits.Service) *Server {
	return &Server{sites: sites, events: events, ledger: ledger, visits: visits}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// EnableCORS enables permissive CORS headers for browser clients.
func (s *Server) EnableCORS() { s.corsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(requestMetrics)
	if s.corsEnabled {
		r.Use(corsMiddleware)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/visibility", s.handleVisibility)

		r.Route("/darksites", func(r chi.Router) {
			r.Get("/", s.handleListDarkSites)
			r.Get("/nearest", s.handleNearestDarkSites)
			r.Get("/{id}", s.handleGetDarkSite)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", s.handleListEvents)
			r.Get("/{id}", s.handleGetEvent)
		})

		r.Post("/visits", s.handleReportVisit)
		r.Get("/users/{id}/badges", s.handleUserBadges)
		r.Get("/leaderboard", s.handleLeaderboard)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// requestMetrics counts requests per route pattern and status class.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(route, fmt.Sprintf("%dxx", ww.Status()/100)).Inc()
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": msg,
	})
}

// corsMiddleware adds permissive CORS headers for browser clients.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
