package store

import "errors"

var (
	// ErrNotFound is returned when a version id or a (version, code) lookup
	// matches nothing. It distinguishes "no such row" from query failures.
	ErrNotFound = errors.New("not found")

	// ErrNoActiveVersion is returned by implicit-version reads when the
	// dictionary has no active version and none was supplied.
	ErrNoActiveVersion = errors.New("no active dictionary version")

	// ErrInvalidState is returned for lifecycle operations that are illegal
	// in the version's current state, e.g. deleting the active version.
	ErrInvalidState = errors.New("invalid version state")
)
