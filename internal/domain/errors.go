package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────

var (
	// Geographic errors
	ErrInvalidCoordinate = errors.New("invalid coordinate: latitude/longitude must be finite and in range")

	// Gamification errors
	ErrUserNotFound  = errors.New("user not found")
	ErrBadgeNotFound = errors.New("badge not found")

	// Catalog errors
	ErrDarkSiteNotFound = errors.New("dark site not found")
	ErrEventNotFound    = errors.New("event not found")

	// Visit errors
	ErrVisitTargetMissing = errors.New("visit must reference an event or a dark site")
)
