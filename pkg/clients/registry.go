package clients

import (
	"slices"
	"strings"

	"github.com/agentstation/careroster/pkg/errors"
)

// Registry is the in-memory canonical entity set: exactly one client per
// stable identifier. It is not safe for concurrent mutation; a pipeline run
// owns its snapshot exclusively.
type Registry struct {
	clients map[string]*Client
}

// NewRegistry builds a registry from clients, rejecting duplicates and
// clients that fail validation.
func NewRegistry(list ...Client) (*Registry, error) {
	r := &Registry{clients: make(map[string]*Client, len(list))}
	for i := range list {
		c := list[i].Clone()
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.clients[c.ID]; dup {
			return nil, errors.NewValidationError("id", c.ID, "duplicate client in registry")
		}
		r.clients[c.ID] = &c
	}
	return r, nil
}

// Len returns the number of clients.
func (r *Registry) Len() int {
	return len(r.clients)
}

// Has reports whether a client with id exists.
func (r *Registry) Has(id string) bool {
	_, ok := r.clients[id]
	return ok
}

// Get returns a copy of the client with id.
func (r *Registry) Get(id string) (Client, bool) {
	c, ok := r.clients[id]
	if !ok {
		return Client{}, false
	}
	return c.Clone(), true
}

// Put inserts or replaces a client.
func (r *Registry) Put(c Client) error {
	if err := c.Validate(); err != nil {
		return err
	}
	cp := c.Clone()
	r.clients[c.ID] = &cp
	return nil
}

// IDs returns every stable identifier in ascending order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, strings.Compare)
	return ids
}

// List returns copies of every client ordered by stable identifier.
func (r *Registry) List() []Client {
	ids := r.IDs()
	out := make([]Client, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.clients[id].Clone())
	}
	return out
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	cp := &Registry{clients: make(map[string]*Client, len(r.clients))}
	for id, c := range r.clients {
		cc := c.Clone()
		cp.clients[id] = &cc
	}
	return cp
}
