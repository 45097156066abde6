package sources

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/agentstation/careroster/pkg/constants"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/logging"
)

// RetryConfig bounds the retries of a failing fetch.
type RetryConfig struct {
	MaxRetries     int           // retries after the first attempt
	InitialBackoff time.Duration // wait before the first retry
	MaxBackoff     time.Duration // backoff ceiling
	Multiplier     float64       // backoff growth per retry
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     constants.MaxRetries,
		InitialBackoff: constants.RetryBackoff,
		MaxBackoff:     constants.MaxRetryBackoff,
		Multiplier:     constants.RetryMultiplier,
	}
}

// Validate checks the configuration.
func (c RetryConfig) Validate() error {
	switch {
	case c.MaxRetries < 0:
		return errors.NewValidationError("max_retries", c.MaxRetries, "cannot be negative")
	case c.InitialBackoff < 0:
		return errors.NewValidationError("initial_backoff", c.InitialBackoff, "cannot be negative")
	case c.MaxBackoff < c.InitialBackoff:
		return errors.NewValidationError("max_backoff", c.MaxBackoff, "must be at least initial_backoff")
	case c.Multiplier < 1:
		return errors.NewValidationError("multiplier", c.Multiplier, "must be at least 1")
	}
	return nil
}

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retry runs fn until it succeeds, returns a permanent error, or the retry
// budget is spent. Exhaustion yields a SourceUnavailableError.
func Retry(ctx context.Context, cfg RetryConfig, source string, fn func(context.Context) error) error {
	var lastErr error
	backoff := cfg.InitialBackoff
	attempts := 0

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		attempts++
		err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				logging.FromContext(ctx).Info().
					Str("source", source).
					Int("attempts", attempts).
					Msg("source fetch succeeded after retry")
			}
			return nil
		}
		lastErr = err

		var perm *permanentError
		if stderrors.As(err, &perm) {
			return errors.NewSourceUnavailableError(source, attempts, perm.err)
		}
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
		if attempt == cfg.MaxRetries {
			break
		}

		logging.FromContext(ctx).Warn().
			Err(err).
			Str("source", source).
			Int("attempt", attempts).
			Dur("backoff", backoff).
			Msg("source fetch failed, retrying")

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * cfg.Multiplier)
		if backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}

	return errors.NewSourceUnavailableError(source, attempts, fmt.Errorf("retries exhausted: %w", lastErr))
}
