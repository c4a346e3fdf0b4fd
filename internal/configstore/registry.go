package configstore

import (
	"sort"
	"sync"
)

// Registry collects the entries plugins expose so a management surface can list and edit them.
type Registry struct {
	mu      sync.RWMutex
	entries map[Scope]map[string]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Scope]map[string]Entry)}
}

// Add registers entries; an entry with the same scope and ID replaces the earlier one.
func (r *Registry) Add(entries ...Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		byID, ok := r.entries[e.Scope()]
		if !ok {
			byID = make(map[string]Entry)
			r.entries[e.Scope()] = byID
		}
		byID[e.ID()] = e
	}
}

// Find looks up an entry by scope and ID.
func (r *Registry) Find(scope Scope, id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[scope][id]
	return e, ok
}

// Entries returns all entries ordered by scope and ID.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Entry
	for _, byID := range r.entries {
		for _, e := range byID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Scope() != out[j].Scope() {
			return out[i].Scope() < out[j].Scope()
		}
		return out[i].ID() < out[j].ID()
	})
	return out
}
