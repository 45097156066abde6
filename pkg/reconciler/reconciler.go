// Package reconciler folds every layer known about a client into one
// canonical record. Scalar fields follow the authority precedence table;
// owned collections are merged item by item on their keys.
package reconciler

import (
	"context"
	"slices"
	"time"

	"github.com/agentstation/careroster/pkg/authority"
	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/inference"
	"github.com/agentstation/careroster/pkg/logging"
	"github.com/agentstation/careroster/pkg/overlay"
	"github.com/agentstation/careroster/pkg/provenance"
)

// Input is everything a run knows about one client.
type Input struct {
	ID string

	// Existing is the persisted record, nil for a client created this run.
	Existing *clients.Client

	// Baseline is the normalized roster import, nil when the roster has no row.
	Baseline *clients.Patch

	// Overlay holds human edits, nil when there are none.
	Overlay *overlay.Overlay

	// Inferred holds the proposals the inference stage produced.
	Inferred []inference.Proposal

	// WelfareFlag is the baseline row's public-assistance marker.
	WelfareFlag bool

	// Machine collection items, in upsert order.
	Events    []clients.ChangeEvent
	Equipment []clients.Equipment
	Sales     []clients.SalesRecord
}

// Reconciler merges client layers.
type Reconciler interface {
	// Snapshot resolves the pre-inference view of a client.
	Snapshot(in Input) inference.Snapshot

	// Client merges one client.
	Client(in Input) (clients.Client, Changes, error)

	// Registry merges the inputs into a copy of the registry. Clients in the
	// registry without an input are carried through the merge unchanged.
	Registry(ctx context.Context, existing *clients.Registry, inputs []Input) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	authorities authority.Authority
	provenance  provenance.Tracker
	clock       func() time.Time
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &reconciler{
		authorities: options.authorities,
		provenance:  provenance.NewTracker(options.tracking),
		clock:       options.clock,
	}, nil
}

// Snapshot resolves each field without the inference layer.
func (r *reconciler) Snapshot(in Input) inference.Snapshot {
	c := r.start(in)
	for _, f := range clients.Fields() {
		w := r.resolve(in, f, false)
		_ = c.Set(f, w.value)
	}
	return inference.Snapshot{Client: c, WelfareFlag: in.WelfareFlag}
}

// Registry merges every input in stable ID order.
func (r *reconciler) Registry(ctx context.Context, existing *clients.Registry, inputs []Input) (*Result, error) {
	logger := logging.FromContext(ctx)
	result := NewResult()

	if existing == nil {
		existing, _ = clients.NewRegistry()
	}
	merged := existing.Clone()

	byID := make(map[string]Input, len(inputs))
	for _, in := range inputs {
		byID[in.ID] = in
	}
	for _, id := range existing.IDs() {
		if _, ok := byID[id]; !ok {
			byID[id] = Input{ID: id}
		}
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		in := byID[id]
		if in.Existing == nil {
			if c, ok := existing.Get(id); ok {
				in.Existing = &c
			}
		}
		if in.Existing == nil && in.Baseline == nil {
			result.Stats.Skipped++
			result.Warnings = append(result.Warnings, "no roster row for "+id+"; not created")
			logger.Warn().Str("client_id", id).Msg("Skipping client without roster row")
			continue
		}

		c, changes, err := r.Client(in)
		if err != nil {
			return nil, err
		}
		result.Stats.add(changes)
		if changes.Changed() {
			result.Changed = append(result.Changed, id)
			logger.Debug().
				Str("client_id", id).
				Bool("created", changes.Created).
				Int("fields", len(changes.Fields)).
				Msg("Client changed")
		}
		if err := merged.Put(c); err != nil {
			return nil, err
		}
	}

	result.Registry = merged
	result.Provenance = r.provenance.Map()
	result.Finalize()
	return result, nil
}

// Client merges one client's layers.
func (r *reconciler) Client(in Input) (clients.Client, Changes, error) {
	var changes Changes
	if in.ID == "" {
		return clients.Client{}, changes, errors.NewValidationError("id", in.ID, "stable identifier is required")
	}
	changes.Created = in.Existing == nil

	merged := r.start(in)
	if err := r.mergeFields(in, &merged, &changes); err != nil {
		return clients.Client{}, changes, err
	}
	mergeCollections(in, &merged, &changes)

	if in.Overlay != nil && in.Overlay.EditedBy != "" {
		editedAt := clients.FormatTime(in.Overlay.EditedAt)
		if merged.EditedBy != in.Overlay.EditedBy || merged.EditedAt != editedAt {
			merged.EditedBy, merged.EditedAt = in.Overlay.EditedBy, editedAt
			changes.Audit = true
		}
	}

	if err := merged.Validate(); err != nil {
		return clients.Client{}, changes, errors.NewMergeError(in.ID, "", err)
	}

	if changes.Changed() {
		merged.UpdatedAt = clients.FormatTime(r.clock())
	}
	return merged, changes, nil
}

func (r *reconciler) start(in Input) clients.Client {
	if in.Existing != nil {
		return in.Existing.Clone()
	}
	return clients.New(in.ID)
}
