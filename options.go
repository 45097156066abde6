package careroster

import (
	"time"

	"github.com/agentstation/careroster/pkg/authority"
	"github.com/agentstation/careroster/pkg/constants"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/inference"
	"github.com/agentstation/careroster/pkg/overlay"
	"github.com/agentstation/careroster/pkg/registry"
	"github.com/agentstation/careroster/pkg/sources"
)

// Option is a function that configures a Pipeline.
type Option func(*config) error

// config holds the pipeline configuration.
type config struct {
	registry    registry.Store
	overlay     overlay.Reader
	sources     []sources.Source
	retry       sources.RetryConfig
	rules       []inference.Rule
	authorities authority.Authority

	dryRun         bool
	timeout        time.Duration
	clock          func() time.Time
	office         string
	provenanceFile string
}

func defaultConfig() *config {
	return &config{
		retry:       sources.DefaultRetryConfig(),
		authorities: authority.New(),
		timeout:     constants.RunTimeout,
		clock:       time.Now,
	}
}

func (c *config) apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	if c.registry == nil {
		return errors.NewConfigError("pipeline", "a registry store is required", nil)
	}
	return c.retry.Validate()
}

// WithRegistry sets the store the registry is read from and written to.
func WithRegistry(store registry.Store) Option {
	return func(c *config) error {
		if store == nil {
			return errors.NewValidationError("registry", nil, "cannot be nil")
		}
		c.registry = store
		return nil
	}
}

// WithOverlay sets the read-only view of human edits.
func WithOverlay(r overlay.Reader) Option {
	return func(c *config) error {
		c.overlay = r
		return nil
	}
}

// WithSources adds extract sources.
func WithSources(srcs ...sources.Source) Option {
	return func(c *config) error {
		for _, s := range srcs {
			if s == nil {
				return errors.NewValidationError("sources", nil, "source cannot be nil")
			}
		}
		c.sources = append(c.sources, srcs...)
		return nil
	}
}

// WithRetry sets the fetch retry policy.
func WithRetry(cfg sources.RetryConfig) Option {
	return func(c *config) error {
		c.retry = cfg
		return nil
	}
}

// WithRules replaces the default inference rules.
func WithRules(rules ...inference.Rule) Option {
	return func(c *config) error {
		c.rules = rules
		return nil
	}
}

// WithAuthorities replaces the default field precedence table.
func WithAuthorities(a authority.Authority) Option {
	return func(c *config) error {
		if a == nil {
			return errors.NewValidationError("authorities", nil, "cannot be nil")
		}
		c.authorities = a
		return nil
	}
}

// WithDryRun runs every stage but skips the write.
func WithDryRun(enabled bool) Option {
	return func(c *config) error {
		c.dryRun = enabled
		return nil
	}
}

// WithTimeout bounds a whole run. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *config) error {
		if d < 0 {
			return errors.NewValidationError("timeout", d, "cannot be negative")
		}
		c.timeout = d
		return nil
	}
}

// WithClock sets the time source used to stamp updated_at.
func WithClock(clock func() time.Time) Option {
	return func(c *config) error {
		if clock == nil {
			return errors.NewValidationError("clock", nil, "cannot be nil")
		}
		c.clock = clock
		return nil
	}
}

// WithOffice sets the office recorded on roster-derived enrollment events.
func WithOffice(office string) Option {
	return func(c *config) error {
		c.office = office
		return nil
	}
}

// WithProvenanceFile writes field provenance to path after each successful
// write.
func WithProvenanceFile(path string) Option {
	return func(c *config) error {
		c.provenanceFile = path
		return nil
	}
}
