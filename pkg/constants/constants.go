// Package constants provides shared constants used throughout the careroster codebase.
// This includes timeouts, retry limits, and file permissions that should be
// consistent across the pipeline, the stores, and the CLI.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for fetching a remote extract
	DefaultHTTPTimeout = 30 * time.Second

	// RunTimeout bounds a whole reconciliation run
	RunTimeout = 30 * time.Minute

	// ShutdownTimeout is how long the CLI waits for cleanup after an error
	ShutdownTimeout = 5 * time.Second
)

// Retry constants govern source fetch backoff
const (
	// MaxRetries is the maximum number of retry attempts for a failed fetch
	MaxRetries = 3

	// RetryBackoff is the base backoff duration for retries
	RetryBackoff = 1 * time.Second

	// MaxRetryBackoff is the maximum backoff duration for retries
	MaxRetryBackoff = 30 * time.Second

	// RetryMultiplier grows the backoff between attempts
	RetryMultiplier = 2.0
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for files holding client data (rw-------)
	SecureFilePermissions = 0600
)

// Registry constants
const (
	// RegistryVersion is the on-disk document version written by the serializer
	RegistryVersion = 1

	// DefaultRegistryFile is the registry location used when none is configured
	DefaultRegistryFile = "clients.yaml"
)
