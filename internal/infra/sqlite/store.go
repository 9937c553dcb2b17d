package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/singularity-sky/singularity/internal/domain"
)

// timeLayout is how timestamps are stored. SQLite has no native time type;
// RFC 3339 strings collate in chronological order.
const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ─── User Operations ────────────────────────────────────────────────────────

// CreateUser inserts a new account row.
func (db *DB) CreateUser(ctx context.Context, u domain.User) error {
	_, err := db.db.ExecContext(ctx, `
		INSERT INTO users (id, email, display_name, score, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.DisplayName, u.Score, formatTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser fetches an account by id.
func (db *DB) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	var createdAt string
	err := db.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, score, created_at
		FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.Email, &u.DisplayName, &u.Score, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}

// IncrementUserScore atomically adds delta to the user's score. The add
// happens inside the UPDATE, never as read-modify-write in Go, so concurrent
// awards to the same user cannot lose increments.
func (db *DB) IncrementUserScore(ctx context.Context, id string, delta int) error {
	res, err := db.db.ExecContext(ctx, `
		UPDATE users SET score = score + ? WHERE id = ?
	`, delta, id)
	if err != nil {
		return fmt.Errorf("increment score: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment score: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// TopUsersByScore returns up to limit users ordered by score descending.
func (db *DB) TopUsersByScore(ctx context.Context, limit int) ([]domain.User, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, email, display_name, score, created_at
		FROM users ORDER BY score DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		var createdAt string
		if err := rows.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Score, &createdAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.CreatedAt = parseTime(createdAt)
		users = append(users, u)
	}
	return users, rows.Err()
}

// ─── Badge Operations ───────────────────────────────────────────────────────

// UpsertBadge inserts or updates a badge catalog entry, keyed by name so
// repeated seeding stays idempotent.
func (db *DB) UpsertBadge(ctx context.Context, b domain.Badge) error {
	_, err := db.db.ExecContext(ctx, `
		INSERT INTO badges (id, name, description, icon_url, points_required)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description     = excluded.description,
			icon_url        = excluded.icon_url,
			points_required = excluded.points_required
	`, b.ID, b.Name, b.Description, b.IconURL, b.PointsRequired)
	if err != nil {
		return fmt.Errorf("upsert badge: %w", err)
	}
	return nil
}

// ListBadges returns the full catalog in threshold order.
func (db *DB) ListBadges(ctx context.Context) ([]domain.Badge, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, name, description, icon_url, points_required
		FROM badges ORDER BY points_required, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	defer rows.Close()

	var badges []domain.Badge
	for rows.Next() {
		var b domain.Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.IconURL, &b.PointsRequired); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// ListGrantedBadgeIDs returns the set of badge IDs already granted to a user.
func (db *DB) ListGrantedBadgeIDs(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT badge_id FROM user_badges WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list granted badges: %w", err)
	}
	defer rows.Close()

	granted := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan badge id: %w", err)
		}
		granted[id] = true
	}
	return granted, rows.Err()
}

// InsertUserBadgeIfAbsent records a grant, returning true only when the row
// was newly inserted. A concurrent duplicate hits the composite primary key
// and becomes a silent no-op, which is what keeps badge grants at-most-once.
func (db *DB) InsertUserBadgeIfAbsent(ctx context.Context, userID, badgeID string, earnedAt time.Time) (bool, error) {
	res, err := db.db.ExecContext(ctx, `
		INSERT INTO user_badges (user_id, badge_id, earned_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, badge_id) DO NOTHING
	`, userID, badgeID, formatTime(earnedAt))
	if err != nil {
		return false, fmt.Errorf("insert user badge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert user badge: %w", err)
	}
	return n > 0, nil
}

// ListUserBadges returns a user's grant history, most recent first.
func (db *DB) ListUserBadges(ctx context.Context, userID string) ([]domain.Badge, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT b.id, b.name, b.description, b.icon_url, b.points_required, ub.earned_at
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = ?
		ORDER BY ub.earned_at DESC, b.points_required DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user badges: %w", err)
	}
	defer rows.Close()

	var badges []domain.Badge
	for rows.Next() {
		var b domain.Badge
		var earnedAt string
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.IconURL, &b.PointsRequired, &earnedAt); err != nil {
			return nil, fmt.Errorf("scan user badge: %w", err)
		}
		at := parseTime(earnedAt)
		b.EarnedAt = &at
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// ─── Dark Site Operations ───────────────────────────────────────────────────

// UpsertDarkSite inserts or updates a site, keyed by name.
func (db *DB) UpsertDarkSite(ctx context.Context, s domain.DarkSite) error {
	_, err := db.db.ExecContext(ctx, `
		INSERT INTO dark_sites (id, name, lat, lon, light_pollution, description)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			lat             = excluded.lat,
			lon             = excluded.lon,
			light_pollution = excluded.light_pollution,
			description     = excluded.description
	`, s.ID, s.Name, s.Location.Lat, s.Location.Lon, s.LightPollution, s.Description)
	if err != nil {
		return fmt.Errorf("upsert dark site: %w", err)
	}
	return nil
}

// ListDarkSites returns every catalogued site. The nearest-site search is a
// linear scan over this list; record counts stay small enough that a spatial
// index would be overkill.
func (db *DB) ListDarkSites(ctx context.Context) ([]domain.DarkSite, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, name, lat, lon, light_pollution, description
		FROM dark_sites ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list dark sites: %w", err)
	}
	defer rows.Close()

	var sites []domain.DarkSite
	for rows.Next() {
		var s domain.DarkSite
		if err := rows.Scan(&s.ID, &s.Name, &s.Location.Lat, &s.Location.Lon, &s.LightPollution, &s.Description); err != nil {
			return nil, fmt.Errorf("scan dark site: %w", err)
		}
		sites = append(sites, s)
	}
	return sites, rows.Err()
}

// GetDarkSite fetches a site by id.
func (db *DB) GetDarkSite(ctx context.Context, id string) (*domain.DarkSite, error) {
	var s domain.DarkSite
	err := db.db.QueryRowContext(ctx, `
		SELECT id, name, lat, lon, light_pollution, description
		FROM dark_sites WHERE id = ?
	`, id).Scan(&s.ID, &s.Name, &s.Location.Lat, &s.Location.Lon, &s.LightPollution, &s.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDarkSiteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get dark site: %w", err)
	}
	return &s, nil
}

// ─── Event Operations ───────────────────────────────────────────────────────

// UpsertEvent inserts or updates an event, keyed by title.
func (db *DB) UpsertEvent(ctx context.Context, e domain.Event) error {
	_, err := db.db.ExecContext(ctx, `
		INSERT INTO events (id, title, description, start_at, end_at, type, lat, lon, location_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(title) DO UPDATE SET
			description   = excluded.description,
			start_at      = excluded.start_at,
			end_at        = excluded.end_at,
			type          = excluded.type,
			lat           = excluded.lat,
			lon           = excluded.lon,
			location_name = excluded.location_name
	`, e.ID, e.Title, e.Description, formatTime(e.Start), formatTime(e.End), string(e.Type),
		e.Location.Lat, e.Location.Lon, e.LocationName)
	if err != nil {
		return fmt.Errorf("upsert event: %w", err)
	}
	return nil
}

// ListEvents returns events ordered by start ascending, optionally bounded.
// Zero-valued bounds mean unfiltered.
func (db *DB) ListEvents(ctx context.Context, start, end time.Time) ([]domain.Event, error) {
	query := `
		SELECT id, title, description, start_at, end_at, type, lat, lon, location_name
		FROM events`
	var args []any
	switch {
	case !start.IsZero() && !end.IsZero():
		query += ` WHERE start_at >= ? AND end_at <= ?`
		args = append(args, formatTime(start), formatTime(end))
	case !start.IsZero():
		query += ` WHERE start_at >= ?`
		args = append(args, formatTime(start))
	case !end.IsZero():
		query += ` WHERE end_at <= ?`
		args = append(args, formatTime(end))
	}
	query += ` ORDER BY start_at`

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetEvent fetches an event by id.
func (db *DB) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	row := db.db.QueryRowContext(ctx, `
		SELECT id, title, description, start_at, end_at, type, lat, lon, location_name
		FROM events WHERE id = ?
	`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (domain.Event, error) {
	var e domain.Event
	var startAt, endAt, typ string
	err := row.Scan(&e.ID, &e.Title, &e.Description, &startAt, &endAt, &typ,
		&e.Location.Lat, &e.Location.Lon, &e.LocationName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scan event: %w", err)
	}
	e.Start = parseTime(startAt)
	e.End = parseTime(endAt)
	e.Type = domain.EventType(typ)
	return e, nil
}

// ─── Visit Operations ───────────────────────────────────────────────────────

// InsertVisit appends a visit record.
func (db *DB) InsertVisit(ctx context.Context, v domain.Visit) error {
	_, err := db.db.ExecContext(ctx, `
		INSERT INTO visits (id, user_id, event_id, dark_site_id, photo_url, visibility_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, v.ID, v.UserID, nullable(v.EventID), nullable(v.DarkSiteID), v.PhotoURL, v.VisibilityScore, formatTime(v.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}
	return nil
}

// ListUserVisits returns a user's visits, most recent first.
func (db *DB) ListUserVisits(ctx context.Context, userID string) ([]domain.Visit, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, user_id, event_id, dark_site_id, photo_url, visibility_score, created_at
		FROM visits WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	defer rows.Close()

	var visits []domain.Visit
	for rows.Next() {
		var v domain.Visit
		var eventID, siteID sql.NullString
		var createdAt string
		if err := rows.Scan(&v.ID, &v.UserID, &eventID, &siteID, &v.PhotoURL, &v.VisibilityScore, &createdAt); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		v.EventID = eventID.String
		v.DarkSiteID = siteID.String
		v.CreatedAt = parseTime(createdAt)
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// nullable converts an empty string to NULL so optional references do not
// store empty-string keys.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
