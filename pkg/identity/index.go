// Package identity maps source rows onto canonical client identities.
//
// Resolution is a cascade: an exact stable-ID match always wins; otherwise
// the row's fuzzy key (normalized name + "|" + normalized phonetic name) is
// looked up in the registry snapshot. Zero or several fuzzy candidates leave
// the row unresolved; it is never filed against a best guess.
package identity

import (
	"slices"

	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/normalize"
)

// Index provides lookup of registry clients by stable ID and by fuzzy key.
type Index struct {
	ByID    map[string]bool
	ByFuzzy map[string][]string
}

// NewIndex indexes every client in the registry snapshot.
func NewIndex(reg *clients.Registry) *Index {
	ix := &Index{
		ByID:    make(map[string]bool),
		ByFuzzy: make(map[string][]string),
	}
	if reg == nil {
		return ix
	}
	for _, c := range reg.List() {
		ix.Add(c.ID, c.Name, c.NameKana)
	}
	return ix
}

// Add indexes a client. Clients created earlier in the same run are added so
// later rows can resolve against them.
func (ix *Index) Add(id, name, kana string) {
	ix.ByID[id] = true
	key := FuzzyKey(name, kana)
	if key == "" || slices.Contains(ix.ByFuzzy[key], id) {
		return
	}
	ix.ByFuzzy[key] = append(ix.ByFuzzy[key], id)
}

// FuzzyKey returns the fallback match key for a name pair, or "" when there
// is no usable name.
func FuzzyKey(name, kana string) string {
	n := normalize.Name(name)
	if n == "" {
		return ""
	}
	return n + "|" + normalize.Name(kana)
}
