package ports

import "errors"

// Standard application-level errors. Adapters wrap underlying infrastructure
// errors with these so callers can branch without knowing the backend.
var (
	// General
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Engine decisions
	ErrNotReady     = errors.New("not enough data for evaluation")
	ErrPositionOpen = errors.New("a position is already open")
	ErrNoPosition   = errors.New("no open position")

	// Market feed
	ErrFeedUnavailable = errors.New("market feed is unavailable")
	ErrRateLimited     = errors.New("API rate limit exceeded")
	ErrNoClosedBar     = errors.New("no new closed bar available yet")

	// Persistence
	ErrDBConnection   = errors.New("database connection error")
	ErrQueryFailed    = errors.New("database query failed")
	ErrSnapshotSchema = errors.New("snapshot schema version mismatch")
)
