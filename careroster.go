// Package careroster reconciles a home-care provider's client roster.
//
// A run pulls the baseline roster, facility occupancy events and the
// equipment feed, resolves every row onto a stable client identity,
// normalizes the raw values, fills gaps by inference, deduplicates change
// events and merges all of it with the human edit overlay into the
// persisted registry. Human edits always win over automated imports.
//
// Example usage:
//
//	store, _ := registry.Open(ctx, "clients.yaml")
//	p, err := careroster.New(
//	    careroster.WithRegistry(store),
//	    careroster.WithOverlay(overlays),
//	    careroster.WithSources(baseline, events),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := p.Run(ctx)
//	fmt.Println(report.Summary())
package careroster

import (
	"context"
	"sync"
)

// Compile-time interface check.
var _ Pipeline = (*pipeline)(nil)

// Pipeline runs reconciliation passes over one registry.
type Pipeline interface {
	// Run performs one full pass. The report is returned even when the run
	// fails; the error is the run-level failure.
	Run(ctx context.Context) (*Report, error)

	// OnStateChange registers a callback for every state transition.
	OnStateChange(fn StateChangeHook)

	// OnClientCreated registers a callback fired after a successful run for
	// each client it created.
	OnClientCreated(fn ClientCreatedHook)

	// OnClientUpdated registers a callback fired after a successful run for
	// each existing client it changed.
	OnClientUpdated(fn ClientUpdatedHook)
}

// pipeline is the default Pipeline. Runs are serialized.
type pipeline struct {
	*hooks
	config *config
	mu     sync.Mutex
}

// New creates a pipeline. A registry store is required.
func New(opts ...Option) (Pipeline, error) {
	cfg := defaultConfig()
	if err := cfg.apply(opts...); err != nil {
		return nil, err
	}
	return &pipeline{
		hooks:  newHooks(),
		config: cfg,
	}, nil
}
