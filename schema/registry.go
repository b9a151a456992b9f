package schema

import "sync"

// Registry keeps descriptors by table name, in registration order.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Descriptor
	order  []string
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Descriptor)}
}

// Register adds d, replacing any descriptor already held for the same table.
func (r *Registry) Register(d *Descriptor) *Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[d.Table]; !exists {
		r.order = append(r.order, d.Table)
	}
	r.byName[d.Table] = d
	return d
}

func (r *Registry) Lookup(table string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[table]
	return d, ok
}

func (r *Registry) All() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}
