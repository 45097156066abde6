package careroster

import (
	"sync"

	"github.com/agentstation/careroster/pkg/clients"
)

// Hook function types for run events
type (
	// StateChangeHook is called on every state transition.
	StateChangeHook func(from, to State)

	// ClientCreatedHook is called for each client a run created.
	ClientCreatedHook func(c clients.Client)

	// ClientUpdatedHook is called for each existing client a run changed.
	ClientUpdatedHook func(old, new clients.Client)
)

// hooks manages run callbacks
type hooks struct {
	mu              sync.RWMutex
	onStateChange   []StateChangeHook
	onClientCreated []ClientCreatedHook
	onClientUpdated []ClientUpdatedHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnStateChange registers a callback for state transitions
func (h *hooks) OnStateChange(fn StateChangeHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onStateChange = append(h.onStateChange, fn)
}

// OnClientCreated registers a callback for created clients
func (h *hooks) OnClientCreated(fn ClientCreatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onClientCreated = append(h.onClientCreated, fn)
}

// OnClientUpdated registers a callback for updated clients
func (h *hooks) OnClientUpdated(fn ClientUpdatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onClientUpdated = append(h.onClientUpdated, fn)
}

func (h *hooks) triggerStateChange(from, to State) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onStateChange {
		fn(from, to)
	}
}

// triggerRegistryUpdate fires client hooks for every changed ID, comparing
// the registry before and after the run.
func (h *hooks) triggerRegistryUpdate(before, after *clients.Registry, changed []string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.onClientCreated) == 0 && len(h.onClientUpdated) == 0 {
		return
	}

	for _, id := range changed {
		now, ok := after.Get(id)
		if !ok {
			continue
		}
		if old, existed := before.Get(id); existed {
			for _, fn := range h.onClientUpdated {
				fn(old, now)
			}
			continue
		}
		for _, fn := range h.onClientCreated {
			fn(now)
		}
	}
}
