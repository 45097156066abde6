package validate_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/careroster/cmd/careroster/cmd/validate"
	"github.com/agentstation/careroster/internal/cmd/application"
	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/overlay"
	"github.com/agentstation/careroster/pkg/registry"
)

func newApp(t *testing.T, edits ...overlay.Overlay) *application.Mock {
	t.Helper()
	reg, err := clients.NewRegistry(clients.New("AZ-1000"))
	require.NoError(t, err)
	store := registry.NewFile(filepath.Join(t.TempDir(), "clients.yaml"))
	require.NoError(t, store.Save(context.Background(), reg))

	mem := overlay.NewMemory(edits...)
	return &application.Mock{
		RegistryFunc: func(context.Context) (registry.Store, error) { return store, nil },
		OverlayFunc:  func(context.Context) (overlay.Store, error) { return mem, nil },
	}
}

func execute(app application.Application) (string, error) {
	cmd := validate.NewCommand(app)
	var stderr bytes.Buffer
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&stderr)
	cmd.SetArgs(nil)
	err := cmd.ExecuteContext(context.Background())
	return stderr.String(), err
}

func overlayWith(id string, f clients.Field, v any) overlay.Overlay {
	var p clients.Patch
	_ = p.Set(f, v)
	return overlay.Overlay{ClientID: id, Fields: p}
}

func TestValidateClean(t *testing.T) {
	out, err := execute(newApp(t, overlayWith("AZ-1000", clients.FieldGender, clients.GenderMale)))
	require.NoError(t, err)
	assert.Contains(t, out, "1 clients")
	assert.Contains(t, out, "1 entries valid")
}

func TestValidateInvalidOverlay(t *testing.T) {
	app := newApp(t,
		overlayWith("AZ-1000", clients.FieldCareLevel, clients.CareLevel("要介護9")),
		overlayWith("AZ-2000", clients.FieldGender, clients.Gender("?")),
	)
	out, err := execute(app)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Contains(t, out, "overlay AZ-1000")
	assert.Contains(t, out, "overlay AZ-2000")
}
