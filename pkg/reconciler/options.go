package reconciler

import (
	"time"

	"github.com/agentstation/careroster/pkg/authority"
	"github.com/agentstation/careroster/pkg/errors"
)

// Options configures a reconciler.
type options struct {
	authorities authority.Authority
	tracking    bool
	clock       func() time.Time
}

func defaultOptions() *options {
	return &options{
		authorities: authority.New(),
		tracking:    true,
		clock:       time.Now,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithAuthorities sets the field precedence table.
func WithAuthorities(authorities authority.Authority) Option {
	return func(r *options) error {
		if authorities == nil {
			return &errors.ValidationError{
				Field:   "authorities",
				Message: "cannot be nil",
			}
		}
		r.authorities = authorities
		return nil
	}
}

// WithProvenance enables field-level tracking.
func WithProvenance(enabled bool) Option {
	return func(r *options) error {
		r.tracking = enabled
		return nil
	}
}

// WithClock sets the time source used to stamp updated_at.
func WithClock(clock func() time.Time) Option {
	return func(r *options) error {
		if clock == nil {
			return &errors.ValidationError{
				Field:   "clock",
				Message: "cannot be nil",
			}
		}
		r.clock = clock
		return nil
	}
}
