package shared

import "github.com/cockroachdb/errors"

var (
	// Configuration errors
	ErrMissingConfig = errors.New("configuration not found")
	ErrInvalidConfig = errors.New("invalid configuration")

	// Input validation errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidArgument = errors.New("invalid argument")

	// Repository outcomes. All but ErrStore are expected business results.
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrNoPlaylist = errors.New("user has no playlists")
	ErrValidation = errors.New("validation failed")
	ErrStore      = errors.New("store failure")
)

// StoreError wraps a database failure and marks it with [ErrStore] so callers can tell it apart from business outcomes.
func StoreError(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), ErrStore)
}

// IsBusinessError reports whether err is one of the expected repository outcomes.
func IsBusinessError(err error) bool {
	return errors.IsAny(err, ErrNotFound, ErrForbidden, ErrNoPlaylist, ErrValidation)
}
