// Package application defines what careroster commands need from the CLI
// application.
//
// Commands accept the Application interface rather than the concrete app,
// so they can be tested against a Mock:
//
//	mock := &application.Mock{
//	    RegistryFunc: func(context.Context) (registry.Store, error) {
//	        return registry.NewFile(path), nil
//	    },
//	}
//	cmd := inspect.NewCommand(mock)
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/careroster"
	"github.com/agentstation/careroster/pkg/overlay"
	"github.com/agentstation/careroster/pkg/registry"
)

// Application provides configured dependencies to commands.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Pipeline builds a reconciliation pipeline from the configuration.
	// Extra options are applied after the configured ones.
	Pipeline(ctx context.Context, opts ...careroster.Option) (careroster.Pipeline, error)

	// Registry opens the configured registry store.
	Registry(ctx context.Context) (registry.Store, error)

	// Overlay opens the configured edit overlay store. The app owns the
	// store and closes it on shutdown.
	Overlay(ctx context.Context) (overlay.Store, error)

	// MetricsFile returns the textfile path run metrics are written to, or "".
	MetricsFile() string

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table).
	OutputFormat() string

	// NoColor reports whether colored output is disabled.
	NoColor() bool

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
