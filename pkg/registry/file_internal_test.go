package registry

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/errors"
)

func TestFileSaveFailureKeepsPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.yaml")

	store := NewFile(path)
	prev, err := clients.NewRegistry(clients.New("AZ-1"))
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, prev))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	store.rename = func(string, string) error { return stderrors.New("disk full") }

	next, err := clients.NewRegistry(clients.New("AZ-1"), clients.New("AZ-2"))
	require.NoError(t, err)
	err = store.Save(ctx, next)
	require.Error(t, err)
	assert.True(t, errors.IsSerialization(err))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file removed after failure")
}
