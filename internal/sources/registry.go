package sources

import "leadgen_backend/internal/leads/domain"

// Registry holds the adapters available to the orchestrator, in registration order.
type Registry struct {
	adapters map[domain.SourceID]Adapter
	order    []domain.SourceID
}

// NewRegistry registers adapters. Later duplicates of a name are ignored.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[domain.SourceID]Adapter, len(adapters))}
	for _, a := range adapters {
		if a == nil {
			continue
		}
		if _, exists := r.adapters[a.Name()]; exists {
			continue
		}
		r.adapters[a.Name()] = a
		r.order = append(r.order, a.Name())
	}
	return r
}

// Get returns the adapter registered under id.
func (r *Registry) Get(id domain.SourceID) (Adapter, bool) {
	a, ok := r.adapters[id]
	return a, ok
}

// All returns every adapter in registration order.
func (r *Registry) All() []Adapter {
	out := make([]Adapter, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.adapters[id])
	}
	return out
}

// Names returns the registered source IDs in order.
func (r *Registry) Names() []domain.SourceID {
	return append([]domain.SourceID(nil), r.order...)
}
