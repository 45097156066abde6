package careroster

import "time"

// State is a stage of a reconciliation run.
type State int

// Run states, in order. Failed is reachable from any state.
const (
	StateIdle State = iota
	StateExtracting
	StateResolving
	StateNormalizing
	StateInferring
	StateDeduplicating
	StateMerging
	StateSerializing
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateIdle:          "idle",
	StateExtracting:    "extracting",
	StateResolving:     "resolving",
	StateNormalizing:   "normalizing",
	StateInferring:     "inferring",
	StateDeduplicating: "deduplicating",
	StateMerging:       "merging",
	StateSerializing:   "serializing",
	StateDone:          "done",
	StateFailed:        "failed",
}

// String returns the state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether the run has finished.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// next returns the state that follows s on success.
func (s State) next() State {
	if s >= StateSerializing {
		return StateDone
	}
	return s + 1
}

// Transition is one recorded state change.
type Transition struct {
	From State     `json:"from" yaml:"from"`
	To   State     `json:"to" yaml:"to"`
	At   time.Time `json:"at" yaml:"at"`
}
