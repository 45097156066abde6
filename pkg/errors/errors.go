// Package errors provides custom error types for the careroster system.
// These errors separate the recoverable per-row failures of a reconciliation
// run from the run-level failures that abort it, and they support
// programmatic checking through errors.Is and errors.As.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the careroster system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnresolved indicates that a source row could not be matched to a client
	ErrUnresolved = errors.New("unresolved identity")

	// ErrMalformed indicates that a source value failed normalization
	ErrMalformed = errors.New("malformed value")

	// ErrSourceUnavailable indicates that a source extract could not be fetched
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSerialization indicates that the registry could not be read or written
	ErrSerialization = errors.New("serialization failed")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrReadOnly indicates an attempt to modify a read-only resource
	ErrReadOnly = errors.New("read only")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// UnresolvedError describes a source row that could not be matched to a client.
// It is recoverable: the row is excluded from merge and counted.
type UnresolvedError struct {
	Source string // source extract the row came from
	Row    int    // 1-based data row number within the extract
	Key    string // stable ID or fuzzy key that was tried
	Reason string // "no-match", "ambiguous", "unknown-id", "no-key"
}

// Error implements the error interface
func (e *UnresolvedError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("unresolved row %d from %s (%s): %s", e.Row, e.Source, e.Key, e.Reason)
	}
	return fmt.Sprintf("unresolved row %d from %s: %s", e.Row, e.Source, e.Reason)
}

// Is implements errors.Is support
func (e *UnresolvedError) Is(target error) bool {
	return target == ErrUnresolved
}

// NewUnresolvedError creates a new UnresolvedError
func NewUnresolvedError(source string, row int, key, reason string) *UnresolvedError {
	return &UnresolvedError{Source: source, Row: row, Key: key, Reason: reason}
}

// MalformedValueError describes a field value that failed normalization and
// was replaced by the field's safe default.
type MalformedValueError struct {
	Field   string
	Value   string
	Default string
	Err     error
}

// Error implements the error interface
func (e *MalformedValueError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s value %q, using %q: %v", e.Field, e.Value, e.Default, e.Err)
	}
	return fmt.Sprintf("malformed %s value %q, using %q", e.Field, e.Value, e.Default)
}

// Unwrap implements errors.Unwrap
func (e *MalformedValueError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *MalformedValueError) Is(target error) bool {
	return target == ErrMalformed
}

// NewMalformedValueError creates a new MalformedValueError
func NewMalformedValueError(field, value, def string) *MalformedValueError {
	return &MalformedValueError{Field: field, Value: value, Default: def}
}

// SourceUnavailableError represents a source extract that could not be fetched
// after all retry attempts.
type SourceUnavailableError struct {
	Source   string
	Attempts int
	Err      error
}

// Error implements the error interface
func (e *SourceUnavailableError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("source %s unavailable after %d attempts: %v", e.Source, e.Attempts, e.Err)
	}
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *SourceUnavailableError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// NewSourceUnavailableError creates a new SourceUnavailableError
func NewSourceUnavailableError(source string, attempts int, err error) *SourceUnavailableError {
	return &SourceUnavailableError{Source: source, Attempts: attempts, Err: err}
}

// SerializationError represents a failure reading or writing the registry.
// The previously persisted snapshot stays authoritative.
type SerializationError struct {
	Operation string // "read", "write"
	Location  string
	Err       error
}

// Error implements the error interface
func (e *SerializationError) Error() string {
	return fmt.Sprintf("registry %s of %s failed: %v", e.Operation, e.Location, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *SerializationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *SerializationError) Is(target error) bool {
	return target == ErrSerialization
}

// NewSerializationError creates a new SerializationError
func NewSerializationError(operation, location string, err error) *SerializationError {
	return &SerializationError{Operation: operation, Location: location, Err: err}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// MergeError represents an error while merging a client.
type MergeError struct {
	ClientID string
	Field    string
	Err      error
}

// Error implements the error interface
func (e *MergeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("merge error for client %s field %s: %v", e.ClientID, e.Field, e.Err)
	}
	return fmt.Sprintf("merge error for client %s: %v", e.ClientID, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *MergeError) Unwrap() error {
	return e.Err
}

// NewMergeError creates a new MergeError
func NewMergeError(clientID, field string, err error) *MergeError {
	return &MergeError{ClientID: clientID, Field: field, Err: err}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "csv", "yaml", "json"
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "rename", "sync", "open"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "open", "load", "get", "put", "create"
	Resource  string // "registry", "overlay", "source", "pipeline"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// TimeoutError represents an operation timeout
type TimeoutError struct {
	Operation string
	Duration  string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	if e.Duration != "" {
		return fmt.Sprintf("operation %s timed out after %s: %s", e.Operation, e.Duration, e.Message)
	}
	return fmt.Sprintf("operation %s timed out: %s", e.Operation, e.Message)
}

// Is implements errors.Is support
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// Unwrap implements errors.Unwrap
func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(operation, duration, message string) *TimeoutError {
	return &TimeoutError{
		Operation: operation,
		Duration:  duration,
		Message:   message,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnresolved checks if an error is an unresolved identity error
func IsUnresolved(err error) bool {
	return errors.Is(err, ErrUnresolved)
}

// IsMalformed checks if an error is a malformed value error
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}

// IsSourceUnavailable checks if an error indicates an unavailable source
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}

// IsSerialization checks if an error is a registry serialization failure
func IsSerialization(err error) bool {
	return errors.Is(err, ErrSerialization)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// IsRecoverable reports whether err is a per-row error that a run absorbs into
// its statistics instead of aborting.
func IsRecoverable(err error) bool {
	return IsUnresolved(err) || IsMalformed(err)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapSerialization wraps an error as a SerializationError
func WrapSerialization(operation, location string, err error) error {
	if err == nil {
		return nil
	}
	return NewSerializationError(operation, location, err)
}
