package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/careroster"
	"github.com/agentstation/careroster/internal/metrics"
	"github.com/agentstation/careroster/pkg/dedup"
	"github.com/agentstation/careroster/pkg/identity"
	"github.com/agentstation/careroster/pkg/reconciler"
	"github.com/agentstation/careroster/pkg/sources"
)

func sampleReport() *careroster.Report {
	return &careroster.Report{
		RunID: "run-1",
		State: careroster.StateDone,
		Rows: map[sources.ID]int{
			sources.BaselineID: 12,
			sources.EventsID:   4,
		},
		Resolution: map[sources.ID]identity.Stats{
			sources.BaselineID: {Exact: 10, Created: 2},
			sources.EventsID:   {Exact: 2, Fuzzy: 1, Unresolved: 1},
		},
		Merge: reconciler.Stats{
			Created:        2,
			Updated:        3,
			Unchanged:      7,
			FieldsChanged:  9,
			FieldsInferred: 2,
			Conflicts:      1,
		},
		Events:     dedup.Stats{Appended: 2, Replaced: 1, Unresolved: 1},
		Malformed:  3,
		Recovered:  4,
		FinishedAt: time.Unix(1767600000, 0),
		Duration:   1500 * time.Millisecond,
	}
}

func TestObserve(t *testing.T) {
	r := metrics.New()
	r.Observe(sampleReport())

	expected := `
# HELP careroster_change_events Machine change-events per merge outcome in the last run.
# TYPE careroster_change_events gauge
careroster_change_events{outcome="appended"} 2
careroster_change_events{outcome="malformed"} 0
careroster_change_events{outcome="replaced"} 1
careroster_change_events{outcome="unchanged"} 0
careroster_change_events{outcome="unresolved"} 1
`
	require.NoError(t, testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "careroster_change_events"))

	count, err := testutil.GatherAndCount(r.Registry(), "careroster_resolution_rows")
	require.NoError(t, err)
	assert.Equal(t, len(sources.IDs())*4, count)
}

func TestObserveFailedRun(t *testing.T) {
	r := metrics.New()
	rep := sampleReport()
	rep.State = careroster.StateFailed
	rep.Fatal = 1
	r.Observe(rep)
	r.Observe(nil)

	expected := `
# HELP careroster_runs_total Reconciliation runs by final state.
# TYPE careroster_runs_total counter
careroster_runs_total{state="failed"} 1
`
	require.NoError(t, testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "careroster_runs_total"))

	expected = `
# HELP careroster_last_success_timestamp_seconds Unix time the last successful run finished.
# TYPE careroster_last_success_timestamp_seconds gauge
careroster_last_success_timestamp_seconds 0
`
	require.NoError(t, testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "careroster_last_success_timestamp_seconds"))
}

func TestWriteTextfile(t *testing.T) {
	r := metrics.New()
	r.Observe(sampleReport())

	path := filepath.Join(t.TempDir(), "careroster.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `careroster_source_rows{source="baseline"} 12`)
	assert.Contains(t, string(data), "careroster_fields_changed 9")
	assert.Contains(t, string(data), "careroster_run_duration_seconds 1.5")
	assert.Contains(t, string(data), `careroster_runs_total{state="done"} 1`)
}

func TestWriteTextfileError(t *testing.T) {
	r := metrics.New()
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	assert.Error(t, err)
}
