// Package overlay holds human edits to client records.
//
// An Overlay carries only what a person explicitly changed: scalar fields
// as a Patch, collection items keyed by ID, and tombstones for removed
// items. The merge engine treats every overlay value as final.
package overlay

import (
	"context"
	"slices"
	"time"

	"github.com/agentstation/careroster/pkg/clients"
)

// Overlay is the set of human edits for one client.
type Overlay struct {
	ClientID string        `json:"client_id" yaml:"client_id"`
	Fields   clients.Patch `json:"fields,omitzero" yaml:"fields,omitempty"`

	Meetings          []clients.Meeting     `json:"meetings,omitempty" yaml:"meetings,omitempty"`
	ChangeEvents      []clients.ChangeEvent `json:"change_events,omitempty" yaml:"change_events,omitempty"`
	PlannedEquipment  []clients.Equipment   `json:"planned_equipment,omitempty" yaml:"planned_equipment,omitempty"`
	SelectedEquipment []clients.Equipment   `json:"selected_equipment,omitempty" yaml:"selected_equipment,omitempty"`
	SalesRecords      []clients.SalesRecord `json:"sales_records,omitempty" yaml:"sales_records,omitempty"`

	// Removed lists keys of collection items a person deleted.
	Removed []string `json:"removed,omitempty" yaml:"removed,omitempty"`

	EditedBy string    `json:"edited_by,omitempty" yaml:"edited_by,omitempty"`
	EditedAt time.Time `json:"edited_at,omitzero" yaml:"edited_at,omitempty"`
}

// Owns reports whether the overlay holds or tombstones an item key.
func (o *Overlay) Owns(key string) bool {
	if o == nil {
		return false
	}
	return slices.Contains(o.Removed, key) ||
		slices.Contains(keys(o.Meetings), key) ||
		slices.Contains(keys(o.ChangeEvents), key) ||
		slices.Contains(keys(o.PlannedEquipment), key) ||
		slices.Contains(keys(o.SelectedEquipment), key) ||
		slices.Contains(keys(o.SalesRecords), key)
}

// Tombstones returns the removed keys as a set.
func (o *Overlay) Tombstones() map[string]bool {
	if o == nil || len(o.Removed) == 0 {
		return nil
	}
	out := make(map[string]bool, len(o.Removed))
	for _, k := range o.Removed {
		out[k] = true
	}
	return out
}

// IsEmpty reports whether the overlay records no edit.
func (o *Overlay) IsEmpty() bool {
	return o == nil || (o.Fields.IsEmpty() &&
		len(o.Meetings) == 0 &&
		len(o.ChangeEvents) == 0 &&
		len(o.PlannedEquipment) == 0 &&
		len(o.SelectedEquipment) == 0 &&
		len(o.SalesRecords) == 0 &&
		len(o.Removed) == 0)
}

func keys[T clients.Keyed](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Key()
	}
	return out
}

// Reader is the read-only view of the overlay store used by the pipeline.
type Reader interface {
	// Get returns the overlay for a client, or a not-found error.
	Get(ctx context.Context, clientID string) (*Overlay, error)

	// List returns every overlay ordered by client ID.
	List(ctx context.Context) ([]Overlay, error)
}

// Store is the read-write overlay store used by the edit layer.
type Store interface {
	Reader

	// Put creates or replaces the overlay for a client.
	Put(ctx context.Context, o Overlay) error

	// Delete removes the overlay for a client.
	Delete(ctx context.Context, clientID string) error

	// Close releases the store's resources.
	Close() error
}

// Index loads every overlay into a map keyed by client ID.
func Index(ctx context.Context, r Reader) (map[string]*Overlay, error) {
	if r == nil {
		return map[string]*Overlay{}, nil
	}
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Overlay, len(list))
	for i := range list {
		out[list[i].ClientID] = &list[i]
	}
	return out, nil
}
