// Package visits implements the visit-report workflow.
// Lifecycle: resolve coordinates → estimate visibility → persist the visit →
// award points → evaluate badge thresholds.
//
// A failed estimation degrades to a score of 0 (fewest points) and the visit
// is still recorded; a failed award or badge evaluation fails the whole
// report, because gamification correctness must never fail silently.
package visits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/singularity-sky/singularity/internal/domain"
	"github.com/singularity-sky/singularity/internal/gamification"
	"github.com/singularity-sky/singularity/internal/visibility"
)

// Report is a visit-report request. Either EventID or DarkSiteID must be set;
// explicit coordinates take precedence over the target's location.
type Report struct {
	UserID     string   `json:"user_id"`
	EventID    string   `json:"event_id,omitempty"`
	DarkSiteID string   `json:"dark_site_id,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lon        *float64 `json:"lon,omitempty"`
	PhotoURL   string   `json:"photo_url,omitempty"`
}

// Result is everything a reported visit produced.
type Result struct {
	Visit          domain.Visit   `json:"visit"`
	PointsAwarded  int            `json:"points_awarded"`
	NewlyEarned    []domain.Badge `json:"newly_earned_badges"`
	VisibilityUsed float64        `json:"visibility_score"`
}

// Service orchestrates visit reporting over the stores and the ledger.
type Service struct {
	sites  domain.SiteStore
	events domain.EventStore
	visits domain.VisitStore
	ledger *gamification.Ledger

	estimate func(lat, lon float64, at time.Time) domain.VisibilityScore
	now      func() time.Time // injectable clock for testing
}

// NewService wires the visit workflow.
func NewService(sites domain.SiteStore, events domain.EventStore, visits domain.VisitStore, ledger *gamification.Ledger) *Service {
	return &Service{
		sites:    sites,
		events:   events,
		visits:   visits,
		ledger:   ledger,
		estimate: visibility.Estimate,
		now:      time.Now,
	}
}

// Submit processes one visit report. Points are awarded before badges are
// evaluated, so the award's effect is always visible to the evaluation.
func (s *Service) Submit(ctx context.Context, r Report) (*Result, error) {
	if r.UserID == "" {
		return nil, errors.New("user id is required")
	}
	if r.EventID == "" && r.DarkSiteID == "" {
		return nil, domain.ErrVisitTargetMissing
	}

	coord, err := s.resolveCoordinates(ctx, r)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	vis := s.estimate(coord.Lat, coord.Lon, now)

	visit := domain.Visit{
		ID:              uuid.NewString(),
		UserID:          r.UserID,
		EventID:         r.EventID,
		DarkSiteID:      r.DarkSiteID,
		PhotoURL:        r.PhotoURL,
		VisibilityScore: vis.Score,
		CreatedAt:       now,
	}
	if err := s.visits.InsertVisit(ctx, visit); err != nil {
		return nil, fmt.Errorf("record visit: %w", err)
	}

	points := gamification.PointsForVisit(vis.Score)
	if err := s.ledger.AwardPoints(ctx, r.UserID, points); err != nil {
		return nil, err
	}
	newlyEarned, err := s.ledger.EvaluateBadges(ctx, r.UserID)
	if err != nil {
		return nil, err
	}

	return &Result{
		Visit:          visit,
		PointsAwarded:  points,
		NewlyEarned:    newlyEarned,
		VisibilityUsed: vis.Score,
	}, nil
}

// resolveCoordinates picks the observation location: explicit lat/lon first,
// then the dark site's location, then the event's.
func (s *Service) resolveCoordinates(ctx context.Context, r Report) (domain.Coordinate, error) {
	if r.Lat != nil && r.Lon != nil {
		return domain.Coordinate{Lat: *r.Lat, Lon: *r.Lon}, nil
	}

	if r.DarkSiteID != "" {
		site, err := s.sites.GetDarkSite(ctx, r.DarkSiteID)
		if err != nil {
			return domain.Coordinate{}, fmt.Errorf("resolve dark site: %w", err)
		}
		return site.Location, nil
	}

	event, err := s.events.GetEvent(ctx, r.EventID)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("resolve event: %w", err)
	}
	return event.Location, nil
}
