package ini

import "errors"

var (
	// ErrIO is returned when the config file cannot be opened, read or written.
	ErrIO = errors.New("config file io")

	// ErrNotFound is returned when the section or key is absent.
	ErrNotFound = errors.New("config value not found")

	// ErrExists is returned by CreateDefault when a file is already present.
	ErrExists = errors.New("config file already exists")
)
