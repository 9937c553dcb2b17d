package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appvisits "github.com/singularity-sky/singularity/internal/app/visits"
	"github.com/singularity-sky/singularity/internal/domain"
	"github.com/singularity-sky/singularity/internal/geo"
	"github.com/singularity-sky/singularity/internal/metrics"
	"github.com/singularity-sky/singularity/internal/visibility"
)

// ─── Visibility ─────────────────────────────────────────────────────────────

// handleVisibility returns the visibility score for a location.
// GET /api/visibility?lat&lon[&time] (time is RFC 3339, default now)
func (s *Server) handleVisibility(w http.ResponseWriter, r *http.Request) {
	coord, ok := parseCoordinate(w, r)
	if !ok {
		return
	}

	at := time.Now().UTC()
	if raw := r.URL.Query().Get("time"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "time must be RFC 3339")
			return
		}
		at = parsed
	}

	score := visibility.Estimate(coord.Lat, coord.Lon, at)
	metrics.VisibilityEstimates.Inc()
	writeJSON(w, http.StatusOK, score)
}

// ─── Dark Sites ─────────────────────────────────────────────────────────────

// handleListDarkSites returns the full site catalog.
// GET /api/darksites
func (s *Server) handleListDarkSites(w http.ResponseWriter, r *http.Request) {
	sites, err := s.sites.ListDarkSites(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": sites})
}

// handleGetDarkSite returns one site by id.
// GET /api/darksites/{id}
func (s *Server) handleGetDarkSite(w http.ResponseWriter, r *http.Request) {
	site, err := s.sites.GetDarkSite(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrDarkSiteNotFound) {
		writeError(w, http.StatusNotFound, "dark site not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, site)
}

// darkSiteWithDistance augments a site with its distance from the query
// origin, matching the shape the site list UI expects.
type darkSiteWithDistance struct {
	domain.DarkSite
	DistanceKm float64 `json:"distance"`
}

// handleNearestDarkSites ranks sites by distance from the caller.
// GET /api/darksites/nearest?lat&lon&limit
func (s *Server) handleNearestDarkSites(w http.ResponseWriter, r *http.Request) {
	coord, ok := parseCoordinate(w, r)
	if !ok {
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	sites, err := s.sites.ListDarkSites(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ranked, err := geo.NearestN(coord, sites, limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	metrics.NearestQueries.Inc()

	items := make([]darkSiteWithDistance, len(ranked))
	for i, rk := range ranked {
		items[i] = darkSiteWithDistance{DarkSite: rk.Record, DistanceKm: rk.DistanceKm}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// ─── Events ─────────────────────────────────────────────────────────────────

// handleListEvents returns events, optionally bounded by start/end.
// GET /api/events[?start&end] (RFC 3339)
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	var start, end time.Time
	if raw := r.URL.Query().Get("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start must be RFC 3339")
			return
		}
		start = t
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "end must be RFC 3339")
			return
		}
		end = t
	}

	events, err := s.events.ListEvents(r.Context(), start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": events})
}

// handleGetEvent returns one event by id.
// GET /api/events/{id}
func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := s.events.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrEventNotFound) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// ─── Visits & Gamification ──────────────────────────────────────────────────

// handleReportVisit runs the visit-report workflow.
// POST /api/visits
func (s *Server) handleReportVisit(w http.ResponseWriter, r *http.Request) {
	var report appvisits.Report
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.visits.Submit(r.Context(), report)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrVisitTargetMissing):
		writeError(w, http.StatusBadRequest, "either event_id or dark_site_id must be provided")
		return
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrDarkSiteNotFound),
		errors.Is(err, domain.ErrEventNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics.VisitsReported.Inc()
	metrics.PointsAwarded.Add(float64(result.PointsAwarded))
	metrics.BadgesGranted.Add(float64(len(result.NewlyEarned)))

	writeJSON(w, http.StatusCreated, result)
}

// handleUserBadges returns a user's badge history.
// GET /api/users/{id}/badges
func (s *Server) handleUserBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := s.ledger.UserBadges(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": badges})
}

// handleLeaderboard returns the top users by score.
// GET /api/leaderboard?limit
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.ledger.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": entries,
		"total": len(entries),
	})
}

// parseCoordinate reads and validates lat/lon query parameters, writing the
// 400 response itself when they are missing or out of range.
func parseCoordinate(w http.ResponseWriter, r *http.Request) (domain.Coordinate, bool) {
	lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, err2 := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "lat and lon query parameters are required and must be numbers")
		return domain.Coordinate{}, false
	}
	coord := domain.Coordinate{Lat: lat, Lon: lon}
	if !coord.Valid() {
		writeError(w, http.StatusBadRequest, "lat and lon must be finite and in range")
		return domain.Coordinate{}, false
	}
	return coord, true
}
