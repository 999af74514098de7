package config

import "errors"

var (
	// ErrMalformed is returned when a value is present but cannot be parsed.
	ErrMalformed = errors.New("malformed config value")

	// ErrCreate is returned when the default config could not be created
	// within the allowed number of attempts.
	ErrCreate = errors.New("failed to create default config")
)
