// Package seed loads the starter catalog: badge tiers, a set of dark-sky
// sites around the Guntur region, and the upcoming celestial events.
// Everything is upserted by fixed id, so re-running is harmless.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/singularity-sky/singularity/internal/domain"
	"github.com/singularity-sky/singularity/internal/infra/sqlite"
)

// Badges is the badge catalog in ascending threshold order.
func Badges() []domain.Badge {
	return []domain.Badge{
		{
			ID:             "76a5d3f2-9d41-4c8a-8f0e-1f2a3b4c5d6e",
			Name:           "First Light",
			Description:    "Report your first stargazing visit.",
			PointsRequired: 0,
		},
		{
			ID:             "d2b9c1a0-5e6f-4a7b-9c8d-0e1f2a3b4c5d",
			Name:           "Stargazer",
			Description:    "Earn 100 points exploring the night sky.",
			PointsRequired: 100,
		},
		{
			ID:             "3c4d5e6f-7a8b-49c0-b1d2-e3f4a5b6c7d8",
			Name:           "Astronomer",
			Description:    "Earn 500 points and know the sky like a map.",
			PointsRequired: 500,
		},
	}
}

// DarkSites is the starter dark-sky site catalog.
func DarkSites() []domain.DarkSite {
	return []domain.DarkSite{
		{
			ID:             "9f8e7d6c-5b4a-4392-8170-6f5e4d3c2b1a",
			Name:           "Kolleru Viewpoint",
			Location:       domain.Coordinate{Lat: 16.3458, Lon: 80.6789},
			LightPollution: 0.12,
			Description:    "Lakeside horizon with very little glow to the east.",
		},
		{
			ID:             "1a2b3c4d-5e6f-4708-9a1b-2c3d4e5f6a7b",
			Name:           "Prakasam Hill Outskirts",
			Location:       domain.Coordinate{Lat: 16.2504, Lon: 80.4501},
			LightPollution: 0.15,
			Description:    "Low ridge south of the barrage, good southern sky.",
		},
		{
			ID:             "8b7a6c5d-4e3f-4210-bc9a-8d7e6f5a4b3c",
			Name:           "Chilakaluripet Farmlands",
			Location:       domain.Coordinate{Lat: 16.0650, Lon: 80.2367},
			LightPollution: 0.10,
			Description:    "Open fields, darkest skies within an hour's drive.",
		},
	}
}

// Events is the starter celestial event calendar.
func Events() []domain.Event {
	return []domain.Event{
		{
			ID:           "e1f2a3b4-c5d6-47e8-9f0a-1b2c3d4e5f6a",
			Title:        "Geminids Meteor Shower",
			Description:  "Up to 120 meteors per hour at peak under a dark sky.",
			Start:        time.Date(2025, 12, 13, 0, 0, 0, 0, time.UTC),
			End:          time.Date(2025, 12, 14, 23, 59, 59, 0, time.UTC),
			Type:         domain.EventMeteorShower,
			Location:     domain.Coordinate{Lat: 16.3067, Lon: 80.4365},
			LocationName: "Guntur region",
		},
		{
			ID:           "f6e5d4c3-b2a1-4098-8765-4f3e2d1c0b9a",
			Title:        "Total Lunar Eclipse",
			Description:  "The Moon passes fully through Earth's umbra.",
			Start:        time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
			End:          time.Date(2026, 3, 3, 13, 0, 0, 0, time.UTC),
			Type:         domain.EventLunarEclipse,
			Location:     domain.Coordinate{Lat: 16.3067, Lon: 80.4365},
			LocationName: "Visible across Asia and the Pacific",
		},
	}
}

// Apply upserts the full starter catalog into the store.
func Apply(ctx context.Context, db *sqlite.DB) error {
	for _, b := range Badges() {
		if err := db.UpsertBadge(ctx, b); err != nil {
			return fmt.Errorf("seed badge %s: %w", b.Name, err)
		}
	}
	for _, s := range DarkSites() {
		if err := db.UpsertDarkSite(ctx, s); err != nil {
			return fmt.Errorf("seed dark site %s: %w", s.Name, err)
		}
	}
	for _, e := range Events() {
		if err := db.UpsertEvent(ctx, e); err != nil {
			return fmt.Errorf("seed event %s: %w", e.Title, err)
		}
	}
	return nil
}
