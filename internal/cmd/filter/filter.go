// Package filter narrows client listings for the inspect command.
package filter

import (
	"strings"

	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/normalize"
)

// ClientFilter applies filters to client lists
type ClientFilter struct {
	Status    string
	CareLevel string
	Facility  string
	Search    string // matched against ID, name and phonetic name
	Limit     int
}

// Apply filters a slice of clients
func (f *ClientFilter) Apply(list []clients.Client) []clients.Client {
	if f == nil || f.isEmpty() {
		return list
	}

	var filtered []clients.Client
	for _, c := range list {
		if !f.matches(c) {
			continue
		}
		filtered = append(filtered, c)
		if f.Limit > 0 && len(filtered) == f.Limit {
			break
		}
	}
	return filtered
}

func (f *ClientFilter) isEmpty() bool {
	return f.Status == "" &&
		f.CareLevel == "" &&
		f.Facility == "" &&
		f.Search == "" &&
		f.Limit == 0
}

func (f *ClientFilter) matches(c clients.Client) bool {
	if f.Status != "" {
		status, ok := normalize.CurrentStatus(f.Status)
		if !ok || c.CurrentStatus != status {
			return false
		}
	}
	if f.CareLevel != "" {
		level, ok := normalize.CareLevel(f.CareLevel)
		if !ok || c.CareLevel != level {
			return false
		}
	}
	if f.Facility != "" && !strings.Contains(normalize.Name(c.FacilityName), normalize.Name(f.Facility)) {
		return false
	}
	if f.Search != "" {
		term := normalize.Name(f.Search)
		if !strings.Contains(normalize.Name(c.ID), term) &&
			!strings.Contains(normalize.Name(c.Name), term) &&
			!strings.Contains(normalize.Name(c.NameKana), term) {
			return false
		}
	}
	return true
}
