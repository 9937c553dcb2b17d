// Package domain contains the core business types and store contracts.
// It imports no infrastructure packages.
package domain

import (
	"math"
	"time"
)

// ─── Geographic Types ───────────────────────────────────────────────────────

// Coordinate is an immutable WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both components are finite and inside the usual
// latitude/longitude ranges.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// DarkSite is a catalogued low-light-pollution observation location.
type DarkSite struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Location       Coordinate `json:"location"`
	LightPollution float64    `json:"light_pollution"` // 0 = pristine, 1 = city core
	Description    string     `json:"description,omitempty"`
}

// Coordinate implements geo.Located for nearest-site ranking.
func (d DarkSite) Coordinate() Coordinate { return d.Location }

// EventType classifies an astronomical event.
type EventType string

const (
	EventMeteorShower EventType = "METEOR_SHOWER"
	EventLunarEclipse EventType = "LUNAR_ECLIPSE"
	EventSolarEclipse EventType = "SOLAR_ECLIPSE"
	EventConjunction  EventType = "CONJUNCTION"
	EventOther        EventType = "OTHER"
)

// Event is a scheduled astronomical event observable from a location.
type Event struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Start        time.Time  `json:"start"`
	End          time.Time  `json:"end"`
	Type         EventType  `json:"type"`
	Location     Coordinate `json:"location"`
	LocationName string     `json:"location_name,omitempty"`
}

// Coordinate implements geo.Located for nearest-event ranking.
func (e Event) Coordinate() Coordinate { return e.Location }

// ─── Visibility Types ───────────────────────────────────────────────────────

// VisibilityFactors holds the six raw readings that feed a visibility score.
// Values are deterministic in (lat, lon, hour bucket) and are reported as the
// explanation of a score, never persisted as ground truth.
type VisibilityFactors struct {
	CloudCover       float64 `json:"cloudCover"`       // 0–1
	AQI              int     `json:"aqi"`              // 0–500
	LightPollution   float64 `json:"lightPollution"`   // 0–1
	Elevation        int     `json:"elevation"`        // 0–3000 m
	MoonIllumination float64 `json:"moonIllumination"` // 0–1
	Horizon          float64 `json:"horizon"`          // 0–1
}

// VisibilityScore is a computed snapshot of sky conditions. It has no
// lifecycle: created fresh per estimation call, never mutated.
type VisibilityScore struct {
	Score     float64           `json:"score"` // 0–100
	UpdatedAt time.Time         `json:"updatedAt"`
	Factors   VisibilityFactors `json:"factors"`
}

// ─── Gamification Types ─────────────────────────────────────────────────────

// User is a platform account. Score is mutated only through the gamification
// ledger's atomic point award and is monotonically non-decreasing.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Score       int       `json:"score"`
	CreatedAt   time.Time `json:"created_at"`
}

// Badge is a static catalog entry. PointsRequired is the minimum cumulative
// score before the badge may be granted.
type Badge struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	IconURL        string     `json:"icon_url,omitempty"`
	PointsRequired int        `json:"points_required"`
	EarnedAt       *time.Time `json:"earned_at,omitempty"` // Set when returned as a grant
}

// UserBadge is the grant relation. At most one row exists per
// (UserID, BadgeID) pair.
type UserBadge struct {
	UserID   string    `json:"user_id"`
	BadgeID  string    `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
}

// Visit records a reported observation of an event or dark site.
type Visit struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	EventID         string    `json:"event_id,omitempty"`
	DarkSiteID      string    `json:"dark_site_id,omitempty"`
	PhotoURL        string    `json:"photo_url,omitempty"`
	VisibilityScore float64   `json:"visibility_score"`
	CreatedAt       time.Time `json:"created_at"`
}

// LeaderboardEntry is a user's position on the points leaderboard.
type LeaderboardEntry struct {
	Rank  int  `json:"rank"`
	User  User `json:"user"`
	Score int  `json:"score"`
}
