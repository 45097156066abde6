package sources_test

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/sources"
)

func fastRetry(maxRetries int) sources.RetryConfig {
	return sources.RetryConfig{
		MaxRetries:     maxRetries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Multiplier:     2,
	}
}

// flaky fails a fixed number of times before returning its extract.
type flaky struct {
	feed     sources.ID
	failures int32
	calls    atomic.Int32
	data     sources.Extract
}

func (f *flaky) ID() sources.ID { return f.feed }

func (f *flaky) Fetch(ctx context.Context) (*sources.Extract, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, stderrors.New("connection reset")
	}
	d := f.data
	return &d, nil
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	src := &flaky{feed: sources.EventsID, failures: 2, data: sources.Extract{
		Events: []sources.EventRow{{Row: 1, SourceEventID: "501"}},
	}}

	ext, err := sources.FetchAll(context.Background(), fastRetry(3), src)
	require.NoError(t, err)
	assert.Len(t, ext.Events, 1)
	assert.Equal(t, int32(3), src.calls.Load())
}

func TestRetryExhaustion(t *testing.T) {
	src := &flaky{feed: sources.BaselineID, failures: 100}

	_, err := sources.FetchAll(context.Background(), fastRetry(2), src)
	require.Error(t, err)
	assert.True(t, errors.IsSourceUnavailable(err))

	var sue *errors.SourceUnavailableError
	require.True(t, stderrors.As(err, &sue))
	assert.Equal(t, "baseline", sue.Source)
	assert.Equal(t, 3, sue.Attempts)
	assert.Equal(t, int32(3), src.calls.Load())
}

func TestPermanentErrorIsNotRetried(t *testing.T) {
	calls := 0
	err := sources.Retry(context.Background(), fastRetry(5), "events", func(context.Context) error {
		calls++
		return sources.Permanent(stderrors.New("bad header"))
	})
	require.Error(t, err)
	assert.True(t, errors.IsSourceUnavailable(err))
	assert.Equal(t, 1, calls)
	assert.Nil(t, sources.Permanent(nil))
}

func TestRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := sources.RetryConfig{MaxRetries: 5, InitialBackoff: time.Hour, MaxBackoff: time.Hour, Multiplier: 1}

	done := make(chan error, 1)
	go func() {
		done <- sources.Retry(ctx, cfg, "events", func(context.Context) error { return stderrors.New("down") })
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("retry did not stop on cancellation")
	}
}

func TestFetchAllIsAllOrNothing(t *testing.T) {
	good := sources.NewStatic(sources.BaselineID, sources.Extract{
		Baseline: []sources.BaselineRow{{Row: 1, ID: "AZ-1000"}},
	})
	bad := &flaky{feed: sources.EventsID, failures: 100}

	ext, err := sources.FetchAll(context.Background(), fastRetry(1), good, bad)
	require.Error(t, err)
	assert.Nil(t, ext)
}

func TestFetchAllCombinesInSourceOrder(t *testing.T) {
	a := sources.NewStatic(sources.BaselineID, sources.Extract{
		Baseline: []sources.BaselineRow{{Row: 1, ID: "AZ-1"}},
	})
	b := sources.NewStatic(sources.EventsID, sources.Extract{
		Events: []sources.EventRow{{Row: 1, SourceEventID: "1"}, {Row: 2, SourceEventID: "2"}},
	})
	c := sources.NewStatic(sources.BaselineID, sources.Extract{
		Baseline: []sources.BaselineRow{{Row: 1, ID: "AZ-2"}},
	})

	ext, err := sources.FetchAll(context.Background(), fastRetry(0), a, b, c)
	require.NoError(t, err)
	require.Len(t, ext.Baseline, 2)
	assert.Equal(t, "AZ-1", ext.Baseline[0].ID)
	assert.Equal(t, "AZ-2", ext.Baseline[1].ID)
	assert.Equal(t, map[sources.ID]int{
		sources.BaselineID:  2,
		sources.EventsID:    2,
		sources.EquipmentID: 0,
	}, ext.Counts())
}

func TestRetryConfigValidate(t *testing.T) {
	assert.NoError(t, sources.DefaultRetryConfig().Validate())

	tests := []sources.RetryConfig{
		{MaxRetries: -1, Multiplier: 2},
		{InitialBackoff: time.Second, MaxBackoff: time.Millisecond, Multiplier: 2},
		{Multiplier: 0.5},
	}
	for _, cfg := range tests {
		assert.True(t, errors.IsValidationError(cfg.Validate()), "%+v", cfg)
	}
}

func TestIDs(t *testing.T) {
	for _, id := range sources.IDs() {
		assert.True(t, id.IsValid())
	}
	assert.False(t, sources.ID("fax").IsValid())
}
