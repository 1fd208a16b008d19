package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors that can occur while reading sources and
// writing records.
var (
	// ErrNotFound indicates that a source or record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnsupportedFormat indicates that no extractor can read the source.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrMalformedSource indicates that a source could be read but not decoded.
	ErrMalformedSource = errors.New("malformed source")

	// ErrConfigNotFound indicates that required configuration is missing.
	ErrConfigNotFound = errors.New("configuration not found")
)

// ExtractError represents a failure to turn a source into an event.
type ExtractError struct {
	// Source is the path or URL that was being read.
	Source string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for ExtractError.
func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract error: source=%s, err=%v", e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExtractError) Unwrap() error { return e.Err }

// NewExtractError creates a new ExtractError with the given details.
func NewExtractError(source string, err error) *ExtractError {
	return &ExtractError{Source: source, Err: err}
}

// StoreError represents an error from a store or ledger operation.
type StoreError struct {
	// Key is the path, source or run the operation concerned.
	Key string

	// Operation is the name of the operation that failed.
	Operation string

	// Err is the underlying error that caused the operation to fail.
	Err error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: operation=%s, key=%s, err=%v", e.Operation, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError creates a new StoreError with the given details.
func NewStoreError(key, operation string, err error) *StoreError {
	return &StoreError{
		Key:       key,
		Operation: operation,
		Err:       err,
	}
}

// ConfigError represents an error from configuration operations.
type ConfigError struct {
	// ConfigKey is the configuration key that was involved in the failed
	// operation.
	ConfigKey string

	// Err is the underlying error that caused the configuration operation
	// to fail.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s, err=%v", e.ConfigKey, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError with the given details.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{
		ConfigKey: key,
		Err:       err,
	}
}
