// Package provenance provides field-level tracking of which merge layer
// supplied each client value.
package provenance

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/careroster/pkg/authority"
	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/constants"
	"github.com/agentstation/careroster/pkg/errors"
)

// Provenance records the origin of a field value.
type Provenance struct {
	Layer         authority.Layer `yaml:"layer"`                    // Layer that supplied the value
	Rule          string          `yaml:"rule,omitempty"`           // Inference rule, when Layer is inference
	Field         clients.Field   `yaml:"field"`                    // Field name
	Value         any             `yaml:"value"`                    // The winning value
	PreviousValue any             `yaml:"previous_value,omitempty"` // Value in the registry before the run
	Timestamp     time.Time       `yaml:"timestamp"`
}

// Map tracks provenance for many clients.
type Map map[string][]Provenance // key is "clientID:field"

// Tracker records provenance during a merge.
type Tracker interface {
	// Track records provenance for a field
	Track(clientID string, field clients.Field, p Provenance)

	// FindByField retrieves provenance for a specific field
	FindByField(clientID string, field clients.Field) []Provenance

	// FindByClient retrieves all provenance for a client
	FindByClient(clientID string) map[clients.Field][]Provenance

	// Map returns the complete provenance map
	Map() Map

	// Clear removes all provenance data
	Clear()
}

type tracker struct {
	provenance Map
	enabled    bool
	now        func() time.Time
}

// NewTracker creates a new provenance tracker. A disabled tracker records
// nothing.
func NewTracker(enabled bool) Tracker {
	return &tracker{
		provenance: make(Map),
		enabled:    enabled,
		now:        time.Now,
	}
}

func (p *tracker) Track(clientID string, field clients.Field, history Provenance) {
	if !p.enabled {
		return
	}
	if history.Timestamp.IsZero() {
		history.Timestamp = p.now().UTC()
	}
	history.Field = field

	key := makeKey(clientID, field)
	p.provenance[key] = append(p.provenance[key], history)
}

func (p *tracker) FindByField(clientID string, field clients.Field) []Provenance {
	if !p.enabled {
		return nil
	}
	return p.provenance[makeKey(clientID, field)]
}

func (p *tracker) FindByClient(clientID string) map[clients.Field][]Provenance {
	if !p.enabled {
		return nil
	}

	result := make(map[clients.Field][]Provenance)
	prefix := clientID + ":"
	for key, info := range p.provenance {
		if field, found := strings.CutPrefix(key, prefix); found {
			result[clients.Field(field)] = info
		}
	}
	return result
}

func (p *tracker) Map() Map {
	if !p.enabled {
		return nil
	}

	// Return a copy to prevent external modification
	result := make(Map, len(p.provenance))
	for k, v := range p.provenance {
		result[k] = append([]Provenance{}, v...)
	}
	return result
}

func (p *tracker) Clear() {
	p.provenance = make(Map)
}

func makeKey(clientID string, field clients.Field) string {
	return fmt.Sprintf("%s:%s", clientID, field)
}

// Report summarizes the winning layer per client field.
type Report struct {
	Clients map[string]map[clients.Field]Provenance
}

// GenerateReport keeps the latest provenance entry per field.
func GenerateReport(m Map) *Report {
	report := &Report{Clients: make(map[string]map[clients.Field]Provenance)}

	for key, infos := range m {
		i := strings.LastIndex(key, ":")
		if i < 0 || len(infos) == 0 {
			continue
		}
		clientID, field := key[:i], clients.Field(key[i+1:])

		latest := infos[0]
		for _, info := range infos[1:] {
			if info.Timestamp.After(latest.Timestamp) {
				latest = info
			}
		}

		fields, ok := report.Clients[clientID]
		if !ok {
			fields = make(map[clients.Field]Provenance)
			report.Clients[clientID] = fields
		}
		fields[field] = latest
	}
	return report
}

// String renders the report sorted by client and field.
func (r *Report) String() string {
	var sb strings.Builder

	sb.WriteString("Provenance Report\n")
	sb.WriteString("=================\n\n")

	ids := make([]string, 0, len(r.Clients))
	for id := range r.Clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		fields := r.Clients[id]
		sb.WriteString(id + "\n")
		sb.WriteString(strings.Repeat("-", 40))
		sb.WriteString("\n")

		names := make([]string, 0, len(fields))
		for f := range fields {
			names = append(names, string(f))
		}
		sort.Strings(names)

		for _, name := range names {
			p := fields[clients.Field(name)]
			from := string(p.Layer)
			if p.Rule != "" {
				from += "/" + p.Rule
			}
			fmt.Fprintf(&sb, "  %s: %v (from %s)\n", name, p.Value, from)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// File is a provenance map stored on disk.
type File struct {
	Provenance Map `yaml:"provenance"`
}

// Save writes the provenance map as YAML.
func Save(path string, m Map) error {
	data, err := yaml.Marshal(File{Provenance: m})
	if err != nil {
		return errors.WrapSerialization("marshal provenance", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create directory", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Load reads provenance data from a YAML file.
// Returns nil, nil if the file doesn't exist (not an error).
func Load(path string) (*File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var pf File
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return &pf, nil
}
