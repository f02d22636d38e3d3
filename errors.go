package credits

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrInvalidInput = errors.New("credits: invalid input")
	ErrNotStarted   = errors.New("credits: engine not started")

	// Catalog errors
	ErrUnknownTier  = errors.New("credits: unknown tier")
	ErrPackNotFound = errors.New("credits: credit pack not found")

	// Bonus errors
	ErrInvalidBonusAmount = errors.New("credits: bonus amount must be a positive integer")

	// Store errors
	ErrKeyNotFound     = errors.New("credits: key not found")
	ErrStoreClosed     = errors.New("credits: store is closed")
	ErrCorruptState    = errors.New("credits: persisted state is corrupt")
	ErrMigrationFailed = errors.New("credits: migration failed")

	// Persistence pipeline errors
	ErrPersistBufferFull = errors.New("credits: persist buffer full")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("credits: validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ValidationError against ErrInvalidInput.
func (e ValidationError) Unwrap() error { return ErrInvalidInput }

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound) ||
		errors.Is(err, ErrPackNotFound)
}

// IsInvalidInput returns true if the error indicates a caller bug
// rejected at the API boundary.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrUnknownTier) ||
		errors.Is(err, ErrInvalidBonusAmount) ||
		errors.Is(err, ErrCorruptState)
}

// IsRetryable returns true if the error is temporary and the operation
// can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPersistBufferFull) ||
		errors.Is(err, ErrStoreClosed)
}
