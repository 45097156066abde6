// Package dedup turns event-shaped source rows into keyed collection items
// whose IDs are a pure function of the upstream identity. Re-ingesting the
// same upstream fact yields the same ID, and Upsert replaces it in place.
package dedup

import (
	"github.com/google/uuid"

	"github.com/agentstation/careroster/pkg/clients"
)

var (
	// EventNamespace scopes synthetic change-event IDs.
	EventNamespace = uuid.MustParse("6f1c8a52-3d0e-5b8f-9a41-2c7e5d90b1a3")

	// EquipmentNamespace scopes synthetic equipment IDs.
	EquipmentNamespace = uuid.MustParse("b2d47e19-8c65-5f0a-a3d8-71e4c6f2903b")
)

// Source and kind used for events derived from the baseline roster.
const (
	RosterSource = "roster"
	InitialKind  = "initial"
)

// SyntheticID returns the deterministic change-event ID for an upstream event.
func SyntheticID(source, sourceEventID, kind string) string {
	return uuid.NewSHA1(EventNamespace, []byte(source+"\x00"+sourceEventID+"\x00"+kind)).String()
}

// EquipmentID returns the deterministic ID for an equipment feed row.
func EquipmentID(source, rowID string) string {
	return uuid.NewSHA1(EquipmentNamespace, []byte(source+"|"+rowID)).String()
}

// Outcome is what an upsert did to a collection.
type Outcome int

// Upsert outcomes.
const (
	Appended Outcome = iota
	Replaced
	Unchanged
)

func (o Outcome) String() string {
	switch o {
	case Appended:
		return "appended"
	case Replaced:
		return "replaced"
	case Unchanged:
		return "unchanged"
	}
	return "unknown"
}

// Upsert replaces the item with the same key in place, or appends it. The
// input slice is not modified.
func Upsert[T clients.Keyed](items []T, item T) ([]T, Outcome) {
	for i, existing := range items {
		if existing.Key() != item.Key() {
			continue
		}
		if existing == item {
			return items, Unchanged
		}
		out := make([]T, len(items))
		copy(out, items)
		out[i] = item
		return out, Replaced
	}
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	return append(out, item), Appended
}

// Remove drops every item whose key is in keys.
func Remove[T clients.Keyed](items []T, keys map[string]bool) ([]T, int) {
	if len(keys) == 0 {
		return items, 0
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keys[it.Key()] {
			continue
		}
		out = append(out, it)
	}
	return out, len(items) - len(out)
}

// Stats counts upsert outcomes and dropped event rows.
type Stats struct {
	Appended   int `json:"appended" yaml:"appended"`
	Replaced   int `json:"replaced" yaml:"replaced"`
	Unchanged  int `json:"unchanged" yaml:"unchanged"`
	Conflicts  int `json:"conflicts" yaml:"conflicts"`
	Unresolved int `json:"unresolved" yaml:"unresolved"`
	Malformed  int `json:"malformed" yaml:"malformed"`
}

// Record counts one outcome.
func (s *Stats) Record(o Outcome) {
	switch o {
	case Appended:
		s.Appended++
	case Replaced:
		s.Replaced++
	case Unchanged:
		s.Unchanged++
	}
}
