package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/careroster"
	"github.com/agentstation/careroster/pkg/overlay"
	"github.com/agentstation/careroster/pkg/registry"
)

// Compile-time interface check.
var _ Application = (*Mock)(nil)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	PipelineFunc     func(ctx context.Context, opts ...careroster.Option) (careroster.Pipeline, error)
	RegistryFunc     func(ctx context.Context) (registry.Store, error)
	OverlayFunc      func(ctx context.Context) (overlay.Store, error)
	MetricsFileFunc  func() string
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	NoColorFunc      func() bool
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Pipeline returns a pipeline using the mock function or nil.
func (m *Mock) Pipeline(ctx context.Context, opts ...careroster.Option) (careroster.Pipeline, error) {
	if m.PipelineFunc != nil {
		return m.PipelineFunc(ctx, opts...)
	}
	return nil, nil
}

// Registry returns a registry store using the mock function or nil.
func (m *Mock) Registry(ctx context.Context) (registry.Store, error) {
	if m.RegistryFunc != nil {
		return m.RegistryFunc(ctx)
	}
	return nil, nil
}

// Overlay returns an overlay store using the mock function or an empty
// in-memory store.
func (m *Mock) Overlay(ctx context.Context) (overlay.Store, error) {
	if m.OverlayFunc != nil {
		return m.OverlayFunc(ctx)
	}
	return overlay.NewMemory(), nil
}

// MetricsFile returns the metrics path using the mock function or "".
func (m *Mock) MetricsFile() string {
	if m.MetricsFileFunc != nil {
		return m.MetricsFileFunc()
	}
	return ""
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// NoColor returns the color setting using the mock function or true.
func (m *Mock) NoColor() bool {
	if m.NoColorFunc != nil {
		return m.NoColorFunc()
	}
	return true
}

// Version returns the version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns the commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns the build date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns the builder using the mock function or "unknown".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "unknown"
}
