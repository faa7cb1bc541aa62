package storage

import "errors"

var (
	// ErrNotFound means the target record is absent from the backend.
	ErrNotFound = errors.New("record not found")
	// ErrNotConfigured means the backend client is unavailable (missing
	// credentials or connection settings); operations fail fast.
	ErrNotConfigured = errors.New("backend client not configured")
	// ErrInvalidRecord means the payload cannot be stored as given.
	ErrInvalidRecord = errors.New("invalid record")
)

// IsNotFound reports whether err means the target record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNotConfigured reports whether err means the backend client was never
// initialized.
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}
