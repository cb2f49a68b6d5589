package config

import "errors"

// Validation errors returned by Build. Callers match them with errors.Is;
// the wrapped message carries the offending value.
var (
	// ErrInvalidDelay is returned when --delay is not a positive integer.
	ErrInvalidDelay = errors.New("invalid delay: must be a positive integer number of seconds")

	// ErrInvalidMaxDepth is returned when --maxdepth is not a positive integer.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be a positive integer")

	// ErrInvalidFormat is returned when --format names an unknown output format.
	ErrInvalidFormat = errors.New("invalid output format")
)
