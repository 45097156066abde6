package overlay

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/errors"
)

// Memory is an in-process overlay store.
type Memory struct {
	mu       sync.RWMutex
	overlays map[string]Overlay
}

// NewMemory returns a memory store seeded with overlays.
func NewMemory(seed ...Overlay) *Memory {
	m := &Memory{overlays: make(map[string]Overlay, len(seed))}
	for _, o := range seed {
		m.overlays[o.ClientID] = clone(o)
	}
	return m
}

// Get returns the overlay for a client.
func (m *Memory) Get(ctx context.Context, clientID string) (*Overlay, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.overlays[clientID]
	if !ok {
		return nil, errors.NewNotFoundError("overlay", clientID)
	}
	o = clone(o)
	return &o, nil
}

// List returns every overlay ordered by client ID.
func (m *Memory) List(ctx context.Context) ([]Overlay, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Overlay, 0, len(m.overlays))
	for _, o := range m.overlays {
		out = append(out, clone(o))
	}
	slices.SortFunc(out, func(a, b Overlay) int { return strings.Compare(a.ClientID, b.ClientID) })
	return out, nil
}

// Put creates or replaces an overlay.
func (m *Memory) Put(ctx context.Context, o Overlay) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if o.ClientID == "" {
		return errors.NewValidationError("client_id", o.ClientID, "client id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overlays[o.ClientID] = clone(o)
	return nil
}

// Delete removes an overlay.
func (m *Memory) Delete(ctx context.Context, clientID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.overlays[clientID]; !ok {
		return errors.NewNotFoundError("overlay", clientID)
	}
	delete(m.overlays, clientID)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

func clone(o Overlay) Overlay {
	var fields clients.Patch
	for _, f := range o.Fields.Fields() {
		v, _ := o.Fields.Get(f)
		_ = fields.Set(f, v)
	}
	o.Fields = fields
	o.Meetings = slices.Clone(o.Meetings)
	o.ChangeEvents = slices.Clone(o.ChangeEvents)
	o.PlannedEquipment = slices.Clone(o.PlannedEquipment)
	o.SelectedEquipment = slices.Clone(o.SelectedEquipment)
	o.SalesRecords = slices.Clone(o.SalesRecords)
	o.Removed = slices.Clone(o.Removed)
	return o
}
