package sources

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/careroster/pkg/logging"
)

// FetchAll fetches every source concurrently with retries. It returns the
// combined extract in source order, or the first error once all fetches have
// stopped. A failure cancels the remaining fetches.
func FetchAll(ctx context.Context, cfg RetryConfig, srcs ...Source) (*Extract, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	results := make([]*Extract, len(srcs))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range srcs {
		g.Go(func() error {
			return Retry(gctx, cfg, src.ID().String(), func(ctx context.Context) error {
				ext, err := src.Fetch(ctx)
				if err != nil {
					return err
				}
				if ext == nil {
					ext = &Extract{}
				}
				results[i] = ext
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Extract{}
	for i, ext := range results {
		out.Append(ext)
		logging.FromContext(ctx).Debug().
			Str("source", srcs[i].ID().String()).
			Int("baseline", len(ext.Baseline)).
			Int("events", len(ext.Events)).
			Int("equipment", len(ext.Equipment)).
			Msg("source fetched")
	}
	return out, nil
}
