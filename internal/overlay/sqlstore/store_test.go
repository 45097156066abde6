package sqlstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/careroster/internal/overlay/sqlstore"
	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/overlay"
)

func sampleOverlay() overlay.Overlay {
	g := clients.GenderFemale
	addr := "鹿児島市1-2-3"
	return overlay.Overlay{
		ClientID: "AZ-1000",
		Fields:   clients.Patch{Gender: &g, Address: &addr},
		ChangeEvents: []clients.ChangeEvent{{
			ID:            "human-1",
			Kind:          clients.EventHospitalizationStop,
			EffectiveDate: "2025-06-01",
			Provenance:    clients.ProvenanceHuman,
		}},
		Removed:  []string{"ev-old"},
		EditedBy: "suzuki",
		EditedAt: time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC),
	}
}

func exerciseStore(t *testing.T, store overlay.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "AZ-1000")
	assert.True(t, errors.IsNotFound(err))

	want := sampleOverlay()
	require.NoError(t, store.Put(ctx, want))
	require.NoError(t, store.Put(ctx, overlay.Overlay{ClientID: "AZ-0999", Removed: []string{"x"}}))

	got, err := store.Get(ctx, "AZ-1000")
	require.NoError(t, err)
	assert.Equal(t, clients.GenderFemale, *got.Fields.Gender)
	assert.Equal(t, "鹿児島市1-2-3", *got.Fields.Address)
	assert.Nil(t, got.Fields.CareLevel)
	assert.Equal(t, want.ChangeEvents, got.ChangeEvents)
	assert.Equal(t, want.Removed, got.Removed)
	assert.Equal(t, "suzuki", got.EditedBy)
	assert.True(t, want.EditedAt.Equal(got.EditedAt))

	// replace
	want.EditedBy = "tanaka"
	want.Removed = nil
	require.NoError(t, store.Put(ctx, want))
	got, err = store.Get(ctx, "AZ-1000")
	require.NoError(t, err)
	assert.Equal(t, "tanaka", got.EditedBy)
	assert.Empty(t, got.Removed)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "AZ-0999", list[0].ClientID)
	assert.Equal(t, "AZ-1000", list[1].ClientID)

	require.NoError(t, store.Delete(ctx, "AZ-0999"))
	assert.True(t, errors.IsNotFound(store.Delete(ctx, "AZ-0999")))

	assert.True(t, errors.IsValidationError(store.Put(ctx, overlay.Overlay{})))
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "overlays.db")
	store, err := sqlstore.Open(context.Background(), "sqlite://"+path)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, sqlstore.DriverSQLite, store.Driver())
	exerciseStore(t, store)
}

func TestSQLiteStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "overlays.db")

	store, err := sqlstore.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, sampleOverlay()))
	require.NoError(t, store.Close())

	reopened, err := sqlstore.Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	idx, err := overlay.Index(ctx, reopened)
	require.NoError(t, err)
	require.Contains(t, idx, "AZ-1000")
	assert.Equal(t, "suzuki", idx["AZ-1000"].EditedBy)
}

func TestSQLiteInMemory(t *testing.T) {
	store, err := sqlstore.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer store.Close()
	exerciseStore(t, store)
}

func TestOpenRequiresDSN(t *testing.T) {
	_, err := sqlstore.Open(context.Background(), "")
	assert.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("CAREROSTER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CAREROSTER_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	store, err := sqlstore.Open(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()

	list, err := store.List(ctx)
	require.NoError(t, err)
	for _, o := range list {
		require.NoError(t, store.Delete(ctx, o.ClientID))
	}

	assert.Equal(t, sqlstore.DriverPostgres, store.Driver())
	exerciseStore(t, store)
}
