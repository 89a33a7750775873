package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationFailed indicates that validation checks have failed
	ErrValidationFailed = errors.New("validation failed")

	// ErrSourceMissingRSSURL indicates a source was requested for scraping
	// but has no rss_url configured.
	ErrSourceMissingRSSURL = errors.New("source has no rss_url configured")

	// ErrJobNotCancellable indicates cancel_job was called on a job that is
	// not currently in-progress.
	ErrJobNotCancellable = errors.New("job is not in-progress")

	// ErrExtractionTooShort indicates every extraction strategy produced
	// content below the minimum acceptable length.
	ErrExtractionTooShort = errors.New("extracted content too short")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
