// Package gamification implements the point-award and badge-grant ledger.
//
// The ledger itself holds no state: every mutation is delegated to the
// store's atomic primitives (score increment, insert-if-absent grant), so
// correctness holds across concurrent requests and multiple service
// instances without application-level locking.
package gamification

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/singularity-sky/singularity/internal/domain"
)

// BasePoints is awarded for every reported visit regardless of conditions.
const BasePoints = 10

// Ledger awards points and evaluates badge thresholds against a store.
type Ledger struct {
	store domain.GamificationStore
	now   func() time.Time // injectable clock for testing
}

// NewLedger wires a ledger over the supplied store.
func NewLedger(store domain.GamificationStore) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// PointsForVisit converts a 0–100 visibility score into the points awarded
// for a visit: base 10 plus a tenth of the score, rounded.
func PointsForVisit(visibilityScore float64) int {
	return BasePoints + int(math.Round(visibilityScore/10))
}

// AwardPoints atomically increments the user's score by points. The
// increment happens at the store, never read-modify-write here, so
// concurrent awards to the same user cannot lose updates. Callers pass
// non-negative points; the score is monotonically non-decreasing.
func (l *Ledger) AwardPoints(ctx context.Context, userID string, points int) error {
	if err := l.store.IncrementUserScore(ctx, userID, points); err != nil {
		return fmt.Errorf("award %d points to %s: %w", points, userID, err)
	}
	return nil
}

// EvaluateBadges grants every badge whose threshold the user's current score
// has crossed and that has not been granted before. It returns the newly
// earned badges in catalog order with EarnedAt set.
//
// Calling it again with no intervening score change returns an empty slice:
// the grant write is an idempotent insert-if-absent backed by a uniqueness
// constraint, so a badge is granted at most once per user even under
// concurrent evaluations. A lost race is swallowed as a no-op, not an error.
func (l *Ledger) EvaluateBadges(ctx context.Context, userID string) ([]domain.Badge, error) {
	user, err := l.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("evaluate badges for %s: %w", userID, err)
	}

	catalog, err := l.store.ListBadges(ctx)
	if err != nil {
		return nil, fmt.Errorf("list badge catalog: %w", err)
	}

	granted, err := l.store.ListGrantedBadgeIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list granted badges for %s: %w", userID, err)
	}

	earnedAt := l.now().UTC()
	newlyEarned := make([]domain.Badge, 0)
	for _, badge := range catalog {
		if badge.PointsRequired > user.Score || granted[badge.ID] {
			continue
		}
		inserted, err := l.store.InsertUserBadgeIfAbsent(ctx, userID, badge.ID, earnedAt)
		if err != nil {
			return nil, fmt.Errorf("grant badge %s to %s: %w", badge.ID, userID, err)
		}
		if !inserted {
			// A concurrent evaluation won the race; the badge is not
			// newly earned from this call's perspective.
			continue
		}
		b := badge
		at := earnedAt
		b.EarnedAt = &at
		newlyEarned = append(newlyEarned, b)
	}
	return newlyEarned, nil
}

// UserBadges returns the user's full grant history, most recent first.
func (l *Ledger) UserBadges(ctx context.Context, userID string) ([]domain.Badge, error) {
	badges, err := l.store.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list badges for %s: %w", userID, err)
	}
	return badges, nil
}

// Leaderboard returns the top users ranked by score descending. The limit is
// defaulted to 100 and clamped to 1000.
func (l *Ledger) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}

	users, err := l.store.TopUsersByScore(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = domain.LeaderboardEntry{Rank: i + 1, User: u, Score: u.Score}
	}
	return entries, nil
}
