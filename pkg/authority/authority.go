// Package authority holds the field precedence table used by the merge
// engine: for every client field, which layer wins when several supply a
// value.
package authority

import (
	"cmp"
	"path/filepath"
	"slices"

	"github.com/agentstation/careroster/pkg/clients"
)

// Layer is a source of field values during a merge.
type Layer string

// Merge layers.
const (
	LayerOverlay   Layer = "overlay"   // human edits
	LayerInference Layer = "inference" // derived attribute rules
	LayerBaseline  Layer = "baseline"  // normalized roster import
	LayerExisting  Layer = "existing"  // last persisted registry
)

// String returns the layer name.
func (l Layer) String() string { return string(l) }

// Authority determines which layer is authoritative for each field
type Authority interface {
	// Order returns the layers for a field, most authoritative first
	Order(field clients.Field) []Layer

	// List returns every configured rule
	List() []Field
}

// Field assigns a priority to one layer for the fields matching Path
type Field struct {
	Path     string `json:"path" yaml:"path"` // field name or pattern, e.g. "*", "key_person"
	Layer    Layer  `json:"layer" yaml:"layer"`
	Priority int    `json:"priority" yaml:"priority"` // higher = more authoritative
}

type authorities struct {
	fields []Field
}

// New returns the default precedence: overlay, inference, baseline, existing.
func New() Authority {
	return &authorities{fields: defaultAuthorities()}
}

// NewWith returns an authority over a custom rule set.
func NewWith(fields ...Field) Authority {
	return &authorities{fields: slices.Clone(fields)}
}

// Order returns the layers for a field, most authoritative first. When a
// layer matches several rules the most specific pattern decides its priority.
func (a *authorities) Order(field clients.Field) []Layer {
	type ranked struct {
		layer    Layer
		priority int
	}
	var ranks []ranked
	for _, layer := range []Layer{LayerOverlay, LayerInference, LayerBaseline, LayerExisting} {
		best := ByField(string(field), FilterByLayer(a.fields, layer))
		if best == nil {
			continue
		}
		ranks = append(ranks, ranked{layer: layer, priority: best.Priority})
	}
	slices.SortStableFunc(ranks, func(x, y ranked) int {
		return cmp.Compare(y.priority, x.priority)
	})

	out := make([]Layer, len(ranks))
	for i, r := range ranks {
		out[i] = r.layer
	}
	return out
}

// List returns every configured rule
func (a *authorities) List() []Field {
	return slices.Clone(a.fields)
}

// ByField returns the highest priority rule for a field path
func ByField(fieldPath string, fields []Field) *Field {
	var best *Field
	var bestPriority, bestLength int

	for i, f := range fields {
		if !MatchesPattern(fieldPath, f.Path) {
			continue
		}
		// Prioritize by: 1) pattern specificity (length), 2) priority, 3) order
		length := len(f.Path)
		if best == nil || length > bestLength || (length == bestLength && f.Priority > bestPriority) {
			best = &fields[i]
			bestPriority = f.Priority
			bestLength = length
		}
	}
	return best
}

// MatchesPattern checks if a field path matches a pattern (supports * wildcards)
func MatchesPattern(fieldPath, pattern string) bool {
	if fieldPath == pattern {
		return true
	}

	if len(pattern) > 0 && pattern[len(pattern)-1] == '*' {
		prefix := pattern[:len(pattern)-1]
		return len(fieldPath) >= len(prefix) && fieldPath[:len(prefix)] == prefix
	}

	matched, err := filepath.Match(pattern, fieldPath)
	if err != nil {
		return false
	}
	return matched
}

// FilterByLayer returns only the rules for one layer
func FilterByLayer(fields []Field, layer Layer) []Field {
	var filtered []Field
	for _, f := range fields {
		if f.Layer == layer {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

func defaultAuthorities() []Field {
	return []Field{
		// Human edits always win
		{Path: "*", Layer: LayerOverlay, Priority: 100},

		// Derived values only reach fields still at baseline
		{Path: "*", Layer: LayerInference, Priority: 90},

		{Path: "*", Layer: LayerBaseline, Priority: 80},
		{Path: "*", Layer: LayerExisting, Priority: 70},
	}
}
