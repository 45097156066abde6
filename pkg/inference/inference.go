// Package inference proposes derived client attributes.
//
// A Rule only ever fills a field that is still at its unset baseline. The
// Engine enforces that gate before a rule is consulted, and every rule reads
// the same pre-inference snapshot, so rule order never changes the outcome.
package inference

import (
	"slices"

	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/logging"
)

// Snapshot is the resolved view of one client before inference runs:
// overlay over baseline import over existing registry.
type Snapshot struct {
	Client clients.Client

	// WelfareFlag is set when the baseline row carries the
	// public-assistance marker.
	WelfareFlag bool
}

// Rule derives one field from a snapshot.
type Rule interface {
	// Name returns the rule name recorded as provenance.
	Name() string

	// Field returns the field the rule proposes a value for.
	Field() clients.Field

	// Propose returns the derived value and whether the rule has evidence.
	Propose(s Snapshot) (any, bool)
}

// Proposal is an applied rule outcome.
type Proposal struct {
	Rule  string
	Field clients.Field
	Value any
}

// Stats counts rule outcomes across a run.
type Stats struct {
	Applied map[string]int `json:"applied,omitempty" yaml:"applied,omitempty"`
	Gated   int            `json:"gated" yaml:"gated"`
}

// Engine runs a fixed rule set.
type Engine struct {
	rules []Rule
	stats Stats
}

// NewEngine creates an engine with the given rules. With no rules it uses
// the default set.
func NewEngine(rules ...Rule) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Engine{
		rules: slices.Clone(rules),
		stats: Stats{Applied: make(map[string]int)},
	}
}

// DefaultRules returns the built-in rules.
func DefaultRules() []Rule {
	return []Rule{
		GenderFromName{},
		PaymentFromWelfareFlag{},
		StatusFromFacility{},
	}
}

// Infer returns the proposals that apply to a snapshot, in field table
// order. When two rules target the same field the first registered wins.
func (e *Engine) Infer(s Snapshot) []Proposal {
	byField := make(map[clients.Field]Proposal)

	for _, rule := range e.rules {
		f := rule.Field()
		if !clients.IsBaseline(f, s.Client.Get(f)) {
			e.stats.Gated++
			continue
		}
		if _, taken := byField[f]; taken {
			continue
		}
		v, ok := rule.Propose(s)
		if !ok || clients.IsBaseline(f, v) {
			continue
		}
		byField[f] = Proposal{Rule: rule.Name(), Field: f, Value: v}
	}

	var out []Proposal
	for _, f := range clients.Fields() {
		p, ok := byField[f]
		if !ok {
			continue
		}
		e.stats.Applied[p.Rule]++
		logging.Debug().
			Str("client_id", s.Client.ID).
			Str("rule", p.Rule).
			Str("field", f.String()).
			Interface("value", p.Value).
			Msg("Inference applied")
		out = append(out, p)
	}
	return out
}

// Stats returns a copy of the accumulated counts.
func (e *Engine) Stats() Stats {
	out := Stats{Gated: e.stats.Gated, Applied: make(map[string]int, len(e.stats.Applied))}
	for k, v := range e.stats.Applied {
		out.Applied[k] = v
	}
	return out
}
