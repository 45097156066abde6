package identity

import (
	"slices"

	"github.com/agentstation/careroster/pkg/errors"
)

// Status is the outcome of resolving one row.
type Status string

// Resolution statuses.
const (
	StatusExact      Status = "exact"
	StatusFuzzy      Status = "fuzzy"
	StatusCreated    Status = "created"
	StatusUnresolved Status = "unresolved"
)

// Reasons a row stays unresolved.
const (
	ReasonNoMatch   = "no-match"
	ReasonAmbiguous = "ambiguous"
	ReasonUnknownID = "unknown-id"
	ReasonNoKey     = "no-key"
)

// Candidate is the identity information a source row offers.
type Candidate struct {
	StableID string
	Name     string
	Kana     string
}

// Mode controls whether a row may mint a new client.
type Mode int

// Resolution modes.
const (
	// MatchOnly rows must resolve to an existing client (events, equipment).
	MatchOnly Mode = iota
	// MatchOrCreate rows carrying an unknown stable ID create that client (baseline roster).
	MatchOrCreate
)

// Resolution is the result of resolving one candidate.
type Resolution struct {
	ID         string
	Status     Status
	Reason     string
	Key        string
	Candidates []string
}

// Resolved reports whether the row maps to a client.
func (r Resolution) Resolved() bool {
	return r.Status != StatusUnresolved
}

// Err returns the recoverable error describing an unresolved row, or nil.
func (r Resolution) Err(source string, row int) error {
	if r.Resolved() {
		return nil
	}
	return errors.NewUnresolvedError(source, row, r.Key, r.Reason)
}

// Resolve runs the match cascade for one candidate against the index. It has
// no side effects; callers that create a client add it to the index.
func Resolve(ix *Index, c Candidate, mode Mode) Resolution {
	if c.StableID != "" {
		if ix.ByID[c.StableID] {
			return Resolution{ID: c.StableID, Status: StatusExact, Key: c.StableID}
		}
		if mode == MatchOrCreate {
			return Resolution{ID: c.StableID, Status: StatusCreated, Key: c.StableID}
		}
		return Resolution{Status: StatusUnresolved, Reason: ReasonUnknownID, Key: c.StableID}
	}

	key := FuzzyKey(c.Name, c.Kana)
	if key == "" {
		return Resolution{Status: StatusUnresolved, Reason: ReasonNoKey}
	}

	matches := ix.ByFuzzy[key]
	switch len(matches) {
	case 0:
		return Resolution{Status: StatusUnresolved, Reason: ReasonNoMatch, Key: key}
	case 1:
		return Resolution{ID: matches[0], Status: StatusFuzzy, Key: key}
	default:
		return Resolution{
			Status:     StatusUnresolved,
			Reason:     ReasonAmbiguous,
			Key:        key,
			Candidates: slices.Sorted(slices.Values(matches)),
		}
	}
}

// Stats aggregates resolution outcomes for one source.
type Stats struct {
	Exact      int            `json:"exact" yaml:"exact"`
	Fuzzy      int            `json:"fuzzy" yaml:"fuzzy"`
	Created    int            `json:"created" yaml:"created"`
	Unresolved int            `json:"unresolved" yaml:"unresolved"`
	Reasons    map[string]int `json:"reasons,omitempty" yaml:"reasons,omitempty"`
}

// Record counts one resolution.
func (s *Stats) Record(r Resolution) {
	switch r.Status {
	case StatusExact:
		s.Exact++
	case StatusFuzzy:
		s.Fuzzy++
	case StatusCreated:
		s.Created++
	case StatusUnresolved:
		s.Unresolved++
		if s.Reasons == nil {
			s.Reasons = make(map[string]int)
		}
		s.Reasons[r.Reason]++
	}
}

// Resolved returns the number of rows that mapped to a client.
func (s Stats) Resolved() int {
	return s.Exact + s.Fuzzy + s.Created
}
