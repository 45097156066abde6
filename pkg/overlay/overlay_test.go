package overlay_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/overlay"
)

func TestOwns(t *testing.T) {
	o := &overlay.Overlay{
		ClientID:     "AZ-1000",
		ChangeEvents: []clients.ChangeEvent{{ID: "ev-1"}},
		Meetings:     []clients.Meeting{{ID: "m-1"}},
		Removed:      []string{"ev-2"},
	}

	assert.True(t, o.Owns("ev-1"))
	assert.True(t, o.Owns("ev-2"))
	assert.True(t, o.Owns("m-1"))
	assert.False(t, o.Owns("ev-3"))

	var none *overlay.Overlay
	assert.False(t, none.Owns("ev-1"))
	assert.True(t, none.IsEmpty())
}

func TestIsEmpty(t *testing.T) {
	o := &overlay.Overlay{ClientID: "AZ-1000"}
	assert.True(t, o.IsEmpty())

	g := clients.GenderMale
	o.Fields.Gender = &g
	assert.False(t, o.IsEmpty())
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := overlay.NewMemory()
	defer store.Close()

	_, err := store.Get(ctx, "AZ-1000")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	g := clients.GenderMale
	require.NoError(t, store.Put(ctx, overlay.Overlay{ClientID: "AZ-1001", Fields: clients.Patch{Gender: &g}}))
	require.NoError(t, store.Put(ctx, overlay.Overlay{ClientID: "AZ-1000", Removed: []string{"x"}}))

	got, err := store.Get(ctx, "AZ-1001")
	require.NoError(t, err)
	assert.Equal(t, clients.GenderMale, *got.Fields.Gender)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "AZ-1000", list[0].ClientID)

	// Returned overlays are copies.
	list[0].Removed[0] = "mutated"
	again, err := store.Get(ctx, "AZ-1000")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, again.Removed)

	require.NoError(t, store.Delete(ctx, "AZ-1000"))
	assert.True(t, errors.IsNotFound(store.Delete(ctx, "AZ-1000")))

	assert.True(t, errors.IsValidationError(store.Put(ctx, overlay.Overlay{})))
}

func TestIndex(t *testing.T) {
	store := overlay.NewMemory(
		overlay.Overlay{ClientID: "AZ-1"},
		overlay.Overlay{ClientID: "AZ-2"},
	)
	idx, err := overlay.Index(context.Background(), store)
	require.NoError(t, err)
	assert.Len(t, idx, 2)
	assert.Equal(t, "AZ-2", idx["AZ-2"].ClientID)

	empty, err := overlay.Index(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := overlay.NewMemory().List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
