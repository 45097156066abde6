package reconciler

import (
	"fmt"
	"time"

	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/dedup"
	"github.com/agentstation/careroster/pkg/provenance"
)

// Changes describes what a merge did to one client.
type Changes struct {
	Created     bool
	Fields      []clients.Field // scalar fields whose value changed
	Inferred    []clients.Field // subset of Fields won by inference
	Events      dedup.Stats     // machine change-event outcomes
	Items       int             // other collection items appended or replaced
	Removed     int             // items dropped by overlay tombstones or as stale sales
	Conflicts   int             // machine items skipped because the overlay owns them
	Collections bool            // any collection differs from before the merge
	Audit       bool            // edited_by or edited_at changed
}

// Changed reports whether the merged client differs from the persisted one.
func (c Changes) Changed() bool {
	return c.Created || len(c.Fields) > 0 || c.Collections || c.Audit
}

// Stats aggregates merge outcomes over a run.
type Stats struct {
	Processed      int         `json:"processed" yaml:"processed"`
	Created        int         `json:"created" yaml:"created"`
	Updated        int         `json:"updated" yaml:"updated"`
	Unchanged      int         `json:"unchanged" yaml:"unchanged"`
	Skipped        int         `json:"skipped" yaml:"skipped"`
	FieldsChanged  int         `json:"fields_changed" yaml:"fields_changed"`
	FieldsInferred int         `json:"fields_inferred" yaml:"fields_inferred"`
	Events         dedup.Stats `json:"events" yaml:"events"`
	ItemsUpserted  int         `json:"items_upserted" yaml:"items_upserted"`
	ItemsRemoved   int         `json:"items_removed" yaml:"items_removed"`
	Conflicts      int         `json:"conflicts" yaml:"conflicts"`
}

func (s *Stats) add(c Changes) {
	s.Processed++
	switch {
	case c.Created:
		s.Created++
	case c.Changed():
		s.Updated++
	default:
		s.Unchanged++
	}
	s.FieldsChanged += len(c.Fields)
	s.FieldsInferred += len(c.Inferred)
	s.Events.Appended += c.Events.Appended
	s.Events.Replaced += c.Events.Replaced
	s.Events.Unchanged += c.Events.Unchanged
	s.ItemsUpserted += c.Items
	s.ItemsRemoved += c.Removed
	s.Conflicts += c.Conflicts
}

// Result represents the outcome of merging a registry.
type Result struct {
	// Registry is the merged entity set.
	Registry *clients.Registry

	// Changed lists the IDs of clients created or updated, in ID order.
	Changed []string

	Stats      Stats
	Provenance provenance.Map
	Metadata   ResultMetadata
	Warnings   []string
}

// ResultMetadata contains timing for the merge.
type ResultMetadata struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// HasChanges returns true if any client was created or updated.
func (r *Result) HasChanges() bool {
	return len(r.Changed) > 0
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	if !r.HasChanges() {
		return "Merge completed. No changes detected."
	}
	return fmt.Sprintf("Merge completed. %d created, %d updated, %d fields changed (%d inferred), %d events appended, %d replaced.",
		r.Stats.Created, r.Stats.Updated, r.Stats.FieldsChanged, r.Stats.FieldsInferred,
		r.Stats.Events.Appended, r.Stats.Events.Replaced)
}

// NewResult creates a new result with defaults.
func NewResult() *Result {
	return &Result{
		Provenance: make(provenance.Map),
		Metadata: ResultMetadata{
			StartTime: time.Now(),
		},
	}
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}
