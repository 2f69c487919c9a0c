package errors

import (
	"errors"
	"fmt"
)

// Application-specific errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimit          = errors.New("rate limit exceeded")
)

// ValidationError represents a validation error on request input
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// FeedParseError indicates the incident feed could not be parsed as XML at all.
// Individual malformed entries are skipped silently; this error means the
// whole document was unusable.
type FeedParseError struct {
	Source string
	Err    error
}

func (e FeedParseError) Error() string {
	return fmt.Sprintf("feed parse error for source %s: %v", e.Source, e.Err)
}

func (e FeedParseError) Unwrap() error {
	return e.Err
}

// DatasetFetchError indicates an external dataset or feed HTTP fetch failed
type DatasetFetchError struct {
	Dataset string
	Err     error
}

func (e DatasetFetchError) Error() string {
	return fmt.Sprintf("dataset fetch error for %s: %v", e.Dataset, e.Err)
}

func (e DatasetFetchError) Unwrap() error {
	return e.Err
}

// ConfigurationError indicates a required external identifier is missing.
// Callers are expected to fall back to documented defaults rather than fail.
type ConfigurationError struct {
	Key     string
	Message string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Key, e.Message)
}

// DatabaseError represents a database-related error
type DatabaseError struct {
	Operation string
	Err       error
}

func (e DatabaseError) Error() string {
	return fmt.Sprintf("database error during %s: %v", e.Operation, e.Err)
}

func (e DatabaseError) Unwrap() error {
	return e.Err
}

// PipelineError represents an ingestion pipeline error
type PipelineError struct {
	Source string
	Stage  string
	Err    error
}

func (e PipelineError) Error() string {
	return fmt.Sprintf("pipeline error in %s at stage %s: %v", e.Source, e.Stage, e.Err)
}

func (e PipelineError) Unwrap() error {
	return e.Err
}
