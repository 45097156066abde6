// Package app holds the careroster CLI application: configuration, logging,
// store lifecycle and command wiring.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/careroster"
	"github.com/agentstation/careroster/internal/cmd/application"
	"github.com/agentstation/careroster/internal/overlay/sqlstore"
	"github.com/agentstation/careroster/internal/sources/csvsource"
	"github.com/agentstation/careroster/internal/transport"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/overlay"
	"github.com/agentstation/careroster/pkg/registry"
	"github.com/agentstation/careroster/pkg/sources"
)

var _ application.Application = (*App)(nil)

// App is the careroster application with its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Overlay store (lazy-initialized, closed on shutdown)
	mu      sync.Mutex
	overlay overlay.Store
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithOverlayStore sets the overlay store instead of opening the configured one.
func WithOverlayStore(store overlay.Store) Option {
	return func(a *App) error {
		a.overlay = store
		return nil
	}
}

// New creates an App with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	a := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	if a.config == nil {
		config, err := LoadConfig("")
		if err != nil {
			return nil, errors.WrapResource("load", "config", "", err)
		}
		a.config = config
	}
	if a.logger == nil {
		logger := NewLogger(a.config)
		a.logger = &logger
	}
	return a, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string { return a.config.Format }

// NoColor reports whether colored output is disabled.
func (a *App) NoColor() bool { return a.config.NoColor }

// MetricsFile returns the configured metrics textfile path.
func (a *App) MetricsFile() string { return a.config.MetricsFile }

// Registry opens the configured registry store.
func (a *App) Registry(ctx context.Context) (registry.Store, error) {
	var opts []registry.S3Option
	if a.config.S3Region != "" {
		opts = append(opts, registry.WithRegion(a.config.S3Region))
	}
	if a.config.S3Endpoint != "" {
		opts = append(opts, registry.WithEndpoint(a.config.S3Endpoint, a.config.S3PathStyle))
	}
	return registry.Open(ctx, a.config.Registry, opts...)
}

// Overlay returns the edit overlay store, opening it on first use. Without a
// configured DSN the overlay is empty and in-memory.
func (a *App) Overlay(ctx context.Context) (overlay.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.overlay != nil {
		return a.overlay, nil
	}
	if a.config.Overlay == "" {
		a.logger.Debug().Msg("no overlay configured, using an empty in-memory overlay")
		a.overlay = overlay.NewMemory()
		return a.overlay, nil
	}

	store, err := sqlstore.Open(ctx, a.config.Overlay)
	if err != nil {
		return nil, errors.WrapResource("open", "overlay", "", err)
	}
	a.overlay = store
	return store, nil
}

// Pipeline builds a reconciliation pipeline from the configuration.
func (a *App) Pipeline(ctx context.Context, opts ...careroster.Option) (careroster.Pipeline, error) {
	store, err := a.Registry(ctx)
	if err != nil {
		return nil, err
	}
	edits, err := a.Overlay(ctx)
	if err != nil {
		return nil, err
	}
	srcs, err := a.sources()
	if err != nil {
		return nil, err
	}

	base := []careroster.Option{
		careroster.WithRegistry(store),
		careroster.WithOverlay(edits),
		careroster.WithSources(srcs...),
		careroster.WithRetry(a.config.Retry),
		careroster.WithTimeout(a.config.Timeout),
		careroster.WithOffice(a.config.Office),
		careroster.WithProvenanceFile(a.config.ProvenanceFile),
	}
	p, err := careroster.New(append(base, opts...)...)
	if err != nil {
		return nil, errors.WrapResource("create", "pipeline", "", err)
	}
	return p, nil
}

// sources builds a CSV source for every configured extract location.
func (a *App) sources() ([]sources.Source, error) {
	client := transport.New(transport.FromToken(a.config.SourceToken))
	locations := map[sources.ID]string{
		sources.BaselineID:  a.config.Baseline,
		sources.EventsID:    a.config.Events,
		sources.EquipmentID: a.config.Equipment,
	}

	var srcs []sources.Source
	for _, id := range sources.IDs() {
		location := locations[id]
		if location == "" {
			continue
		}
		opts := []csvsource.Option{csvsource.WithClient(client)}
		if a.config.EventSystem != "" {
			opts = append(opts, csvsource.WithEventSystem(a.config.EventSystem))
		}
		src, err := csvsource.New(id, location, opts...)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, src)
	}
	if len(srcs) == 0 {
		return nil, errors.NewConfigError("sources", "no source extract configured (set sources.baseline)", nil)
	}
	return srcs, nil
}

// Shutdown releases the resources the app opened.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.overlay == nil {
		return nil
	}
	err := a.overlay.Close()
	a.overlay = nil
	if err != nil {
		a.logger.Error().Err(err).Msg("Failed to close overlay store during shutdown")
		return errors.WrapResource("close", "overlay", "", err)
	}
	return nil
}
