// Package registry persists the canonical client set.
//
// The on-disk form is one YAML document with a version header and the
// clients ordered by stable ID, so two writes of the same registry are
// byte-identical. Stores replace the whole document atomically: readers see
// either the previous snapshot or the new one.
package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/constants"
	"github.com/agentstation/careroster/pkg/errors"
)

// Document is the persisted registry layout.
type Document struct {
	Version int              `yaml:"version"`
	Clients []clients.Client `yaml:"clients"`
}

// quoted writes every free-text string as a double-quoted scalar. Plain and
// block scalars lose tabs, carriage returns, leading indentation and values
// such as ".inf" that YAML resolves to another type.
var quoted = yaml.CustomMarshaler[string](func(s string) ([]byte, error) {
	return []byte(strconv.Quote(s)), nil
})

// Encode renders a registry deterministically. The output is decoded again
// before it is returned; a document that would not read back as the same
// clients is a serialization error.
func Encode(reg *clients.Registry) ([]byte, error) {
	doc := Document{Version: constants.RegistryVersion, Clients: []clients.Client{}}
	if reg != nil {
		doc.Clients = reg.List()
	}
	data, err := yaml.MarshalWithOptions(doc, quoted)
	if err != nil {
		return nil, errors.WrapSerialization("encode", "registry", err)
	}
	if err := verifyRoundTrip(doc.Clients, data); err != nil {
		return nil, errors.WrapSerialization("encode", "registry", err)
	}
	return data, nil
}

func verifyRoundTrip(want []clients.Client, data []byte) error {
	var back Document
	if err := yaml.Unmarshal(data, &back); err != nil {
		return fmt.Errorf("re-read encoded registry: %w", err)
	}
	if len(back.Clients) != len(want) {
		return fmt.Errorf("encoded registry holds %d clients, want %d", len(back.Clients), len(want))
	}
	for i := range want {
		a, err := json.Marshal(want[i])
		if err != nil {
			return err
		}
		b, err := json.Marshal(back.Clients[i])
		if err != nil {
			return err
		}
		if !bytes.Equal(a, b) {
			return fmt.Errorf("client %s does not survive encoding", want[i].ID)
		}
	}
	return nil
}

// Decode parses a registry document. Empty input is an empty registry.
// Duplicate or invalid clients fail validation.
func Decode(data []byte, location string) (*clients.Registry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return clients.NewRegistry()
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("yaml", location, err)
	}
	if doc.Version > constants.RegistryVersion {
		return nil, errors.NewValidationError("version", doc.Version,
			fmt.Sprintf("registry version %d is newer than supported version %d", doc.Version, constants.RegistryVersion))
	}

	reg, err := clients.NewRegistry(doc.Clients...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", location, err)
	}
	return reg, nil
}
