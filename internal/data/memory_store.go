// Package data provides the KeyValueStore backends that persist plugin configuration.
package data

import (
	"context"
	"sort"
	"sync"

	"github.com/target/spotify-auth/internal/ports"
)

// MemoryStore keeps entries in process memory. It is used by tests and the memory backend.
type MemoryStore struct {
	mu     sync.RWMutex
	scopes map[string]map[string]string
}

var _ ports.KeyValueStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scopes: make(map[string]map[string]string)}
}

// Get returns the value stored under key in scope.
func (s *MemoryStore) Get(_ context.Context, scope, key string) (string, bool, error) {
	if err := validateKey(scope, key); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.scopes[scope][key]
	return v, ok, nil
}

// Keys lists the keys of scope in sorted order.
func (s *MemoryStore) Keys(_ context.Context, scope string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.scopes[scope]), nil
}

// Apply writes all mutations atomically with respect to concurrent readers.
func (s *MemoryStore) Apply(_ context.Context, scope string, mutations ...ports.Mutation) error {
	if err := validateMutations(scope, mutations); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	applyMutations(s.scopes, scope, mutations)
	return nil
}

// Snapshot returns a deep copy of all scopes.
func (s *MemoryStore) Snapshot() map[string]map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneScopes(s.scopes)
}

func applyMutations(scopes map[string]map[string]string, scope string, mutations []ports.Mutation) {
	entries, ok := scopes[scope]
	if !ok {
		entries = make(map[string]string)
		scopes[scope] = entries
	}
	for _, m := range mutations {
		if m.Delete {
			delete(entries, m.Key)
			continue
		}
		entries[m.Key] = m.Value
	}
	if len(entries) == 0 {
		delete(scopes, scope)
	}
}

func cloneScopes(src map[string]map[string]string) map[string]map[string]string {
	out := make(map[string]map[string]string, len(src))
	for scope, entries := range src {
		cp := make(map[string]string, len(entries))
		for k, v := range entries {
			cp[k] = v
		}
		out[scope] = cp
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
