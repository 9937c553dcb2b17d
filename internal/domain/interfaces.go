package domain

import (
	"context"
	"time"
)

// ─── Store Interfaces ───────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; the engines depend on them.

// GamificationStore is the persistence contract consumed by the ledger.
// Implementations must make IncrementUserScore an atomic add and enforce a
// uniqueness constraint behind InsertUserBadgeIfAbsent, so concurrent awards
// and evaluations for the same user stay correct without application locks.
type GamificationStore interface {
	GetUser(ctx context.Context, id string) (*User, error)

	// IncrementUserScore atomically adds delta to the user's score.
	// Returns ErrUserNotFound if the user does not exist.
	IncrementUserScore(ctx context.Context, id string, delta int) error

	ListBadges(ctx context.Context) ([]Badge, error)
	ListGrantedBadgeIDs(ctx context.Context, userID string) (map[string]bool, error)

	// InsertUserBadgeIfAbsent records a grant. Returns true if newly
	// inserted, false if the (userID, badgeID) pair already existed.
	InsertUserBadgeIfAbsent(ctx context.Context, userID, badgeID string, earnedAt time.Time) (bool, error)

	// ListUserBadges returns the user's grant history, most recent first.
	ListUserBadges(ctx context.Context, userID string) ([]Badge, error)

	// TopUsersByScore returns up to limit users ordered by score descending.
	TopUsersByScore(ctx context.Context, limit int) ([]User, error)
}

// SiteStore is the persistence contract for dark-site queries.
type SiteStore interface {
	ListDarkSites(ctx context.Context) ([]DarkSite, error)
	GetDarkSite(ctx context.Context, id string) (*DarkSite, error)
}

// EventStore is the persistence contract for the event catalog.
type EventStore interface {
	// ListEvents returns events ordered by start ascending. Zero-valued
	// bounds mean unfiltered.
	ListEvents(ctx context.Context, start, end time.Time) ([]Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
}

// VisitStore is the persistence contract for visit records.
type VisitStore interface {
	InsertVisit(ctx context.Context, v Visit) error
	ListUserVisits(ctx context.Context, userID string) ([]Visit, error)
}
