package sync_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/careroster"
	synccmd "github.com/agentstation/careroster/cmd/careroster/cmd/sync"
	"github.com/agentstation/careroster/internal/cmd/application"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/overlay"
	"github.com/agentstation/careroster/pkg/registry"
	"github.com/agentstation/careroster/pkg/sources"
)

type fixture struct {
	store registry.Store
	app   *application.Mock
}

func newFixture(t *testing.T, format string, srcs ...sources.Source) *fixture {
	t.Helper()
	f := &fixture{store: registry.NewFile(filepath.Join(t.TempDir(), "clients.yaml"))}
	retry := sources.DefaultRetryConfig()
	retry.MaxRetries = 0
	f.app = &application.Mock{
		PipelineFunc: func(_ context.Context, opts ...careroster.Option) (careroster.Pipeline, error) {
			base := []careroster.Option{
				careroster.WithRegistry(f.store),
				careroster.WithOverlay(overlay.NewMemory()),
				careroster.WithSources(srcs...),
				careroster.WithRetry(retry),
			}
			return careroster.New(append(base, opts...)...)
		},
		OutputFormatFunc: func() string { return format },
	}
	return f
}

func roster() sources.Source {
	return sources.NewStatic(sources.BaselineID, sources.Extract{
		Baseline: []sources.BaselineRow{
			{Row: 2, ID: "AZ-1000", Name: "佐藤 花子", NameKana: "サトウ ハナコ", CareLevel: "介護２"},
		},
	})
}

type downSource struct{}

func (downSource) ID() sources.ID { return sources.EventsID }

func (downSource) Fetch(context.Context) (*sources.Extract, error) {
	return nil, errors.New("connection refused")
}

func execute(t *testing.T, app application.Application, args ...string) (string, string, error) {
	t.Helper()
	cmd := synccmd.NewCommand(app)
	var out, stderr bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), stderr.String(), err
}

func TestSyncWritesRegistry(t *testing.T) {
	f := newFixture(t, "table", roster())

	out, status, err := execute(t, f.app)
	require.NoError(t, err)
	assert.Contains(t, out, "Fields changed")
	assert.Contains(t, status, "registry written")

	reg, err := f.store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, reg.Has("AZ-1000"))
}

func TestSyncDryRun(t *testing.T) {
	f := newFixture(t, "yaml", roster())

	out, status, err := execute(t, f.app, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "dry_run: true")
	assert.Contains(t, status, "dry run")

	reg, err := f.store.Load(context.Background())
	require.NoError(t, err)
	assert.Zero(t, reg.Len())
}

func TestSyncMetricsFile(t *testing.T) {
	f := newFixture(t, "json", roster())
	path := filepath.Join(t.TempDir(), "careroster.prom")

	_, _, err := execute(t, f.app, "--metrics-file", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `careroster_runs_total{state="done"} 1`)
	assert.Contains(t, string(data), `careroster_clients{outcome="created"} 1`)
}

func TestSyncFailureReturnsError(t *testing.T) {
	f := newFixture(t, "json", roster(), downSource{})

	out, status, err := execute(t, f.app)
	require.Error(t, err)
	assert.True(t, errors.IsSourceUnavailable(err))
	assert.Contains(t, out, `"state": "failed"`)
	assert.Contains(t, status, "sync failed")
}
