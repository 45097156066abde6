package careroster

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/careroster/pkg/dedup"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/identity"
	"github.com/agentstation/careroster/pkg/reconciler"
	"github.com/agentstation/careroster/pkg/sources"
)

// maxErrorSamples caps the recovered error messages kept in a report.
const maxErrorSamples = 50

// Report is the outcome of one run.
type Report struct {
	RunID    string `json:"run_id" yaml:"run_id"`
	State    State  `json:"state" yaml:"state"`
	DryRun   bool   `json:"dry_run" yaml:"dry_run"`
	Written  bool   `json:"written" yaml:"written"`
	Location string `json:"location" yaml:"location"`

	// Rows extracted per source feed.
	Rows map[sources.ID]int `json:"rows" yaml:"rows"`

	// Resolution outcomes per source feed.
	Resolution map[sources.ID]identity.Stats `json:"resolution" yaml:"resolution"`

	// Inferred counts proposals per rule; Gated counts fields the engine
	// skipped because they already held a value.
	Inferred map[string]int `json:"inferred,omitempty" yaml:"inferred,omitempty"`
	Gated    int            `json:"gated" yaml:"gated"`

	// Merge aggregates the field and collection merge.
	Merge reconciler.Stats `json:"merge" yaml:"merge"`

	// Events combines merge outcomes with rows dropped before the merge.
	Events dedup.Stats `json:"events" yaml:"events"`

	Malformed int `json:"malformed" yaml:"malformed"`
	Recovered int `json:"recovered" yaml:"recovered"`
	Fatal     int `json:"fatal" yaml:"fatal"`

	Errors   []string `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Changed  []string `json:"changed,omitempty" yaml:"changed,omitempty"`

	Trace []Transition `json:"trace" yaml:"trace"`

	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time     `json:"finished_at" yaml:"finished_at"`
	Duration   time.Duration `json:"duration" yaml:"duration"`

	// Err is the run-level error of a failed run.
	Err error `json:"-" yaml:"-"`
}

func newReport(runID string, dryRun bool, location string) *Report {
	return &Report{
		RunID:      runID,
		DryRun:     dryRun,
		Location:   location,
		Rows:       make(map[sources.ID]int),
		Resolution: make(map[sources.ID]identity.Stats),
		Inferred:   make(map[string]int),
	}
}

// recover counts a per-row error that did not stop the run. Errors outside
// the recoverable classes are sampled with an "unexpected" prefix.
func (r *Report) recover(err error) {
	if err == nil {
		return
	}
	r.Recovered++
	if len(r.Errors) < maxErrorSamples {
		msg := err.Error()
		if !errors.IsRecoverable(err) {
			msg = "unexpected: " + msg
		}
		r.Errors = append(r.Errors, msg)
	}
}

// Unresolved returns the number of unresolved rows across all feeds.
func (r *Report) Unresolved() int {
	n := 0
	for _, s := range r.Resolution {
		n += s.Unresolved
	}
	return n
}

// Succeeded reports whether the run reached Done.
func (r *Report) Succeeded() bool {
	return r.State == StateDone
}

// Summary returns a one-line description of the run.
func (r *Report) Summary() string {
	if r.State == StateFailed {
		return fmt.Sprintf("Run %s failed: %v", r.RunID, r.Err)
	}
	verb := "written"
	switch {
	case r.DryRun:
		verb = "not written (dry run)"
	case !r.Written:
		verb = "unchanged"
	}
	return fmt.Sprintf("Run %s done, registry %s. %d created, %d updated, %d fields changed (%d inferred), events %d appended / %d replaced / %d unchanged, %d conflicts, %d unresolved, %d malformed.",
		r.RunID, verb,
		r.Merge.Created, r.Merge.Updated, r.Merge.FieldsChanged, r.Merge.FieldsInferred,
		r.Events.Appended, r.Events.Replaced, r.Events.Unchanged,
		r.Merge.Conflicts, r.Unresolved(), r.Malformed)
}

// TraceString renders the state trace as "idle -> extracting -> ...".
func (r *Report) TraceString() string {
	if len(r.Trace) == 0 {
		return StateIdle.String()
	}
	parts := []string{r.Trace[0].From.String()}
	for _, t := range r.Trace {
		parts = append(parts, t.To.String())
	}
	return strings.Join(parts, " -> ")
}
