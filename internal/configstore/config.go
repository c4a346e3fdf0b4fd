// Package configstore implements the plugin configuration system: typed entries stored in a
// scoped key-value backend, with serializers, checkers and UI hints for a management surface.
package configstore

import (
	"context"
	"fmt"

	apperrors "github.com/target/spotify-auth/internal/errors"
	"github.com/target/spotify-auth/internal/ports"
)

// Scope separates plain configuration from secrets and runtime state.
type Scope string

const (
	// ScopeConfig holds non-secret settings such as the callback port.
	ScopeConfig Scope = "config"
	// ScopeSecrets holds credentials such as the access token.
	ScopeSecrets Scope = "secrets"
	// ScopeState holds values a plugin persists for itself.
	ScopeState Scope = "state"
)

// Config is one scope of one plugin's configuration.
type Config struct {
	store     ports.KeyValueStore
	scope     Scope
	namespace string
}

// New returns a Config that stores keys as "<namespace>.<key>" in scope.
func New(store ports.KeyValueStore, scope Scope, namespace string) *Config {
	return &Config{store: store, scope: scope, namespace: namespace}
}

// Scope returns the scope the config writes to.
func (c *Config) Scope() Scope { return c.scope }

// Namespace returns the plugin namespace of the config.
func (c *Config) Namespace() string { return c.namespace }

func (c *Config) storageKey(key string) string {
	if c.namespace == "" {
		return key
	}
	return c.namespace + "." + key
}

func (c *Config) getRaw(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := c.store.Get(ctx, string(c.scope), c.storageKey(key))
	if err != nil {
		return "", false, fmt.Errorf("get %s/%s: %w", c.scope, key, err)
	}
	return v, ok, nil
}

// Assignment is a pending write of one entry, applied together with others by Apply.
type Assignment struct {
	cfg      *Config
	mutation ports.Mutation
}

// Apply writes all assignments as a single batch. Every assignment must belong to c.
func (c *Config) Apply(ctx context.Context, assignments ...Assignment) error {
	if len(assignments) == 0 {
		return nil
	}
	mutations := make([]ports.Mutation, 0, len(assignments))
	for _, a := range assignments {
		if a.cfg != c {
			return apperrors.ValidationField(a.mutation.Key, "assignment belongs to a different config")
		}
		mutations = append(mutations, a.mutation)
	}
	if err := c.store.Apply(ctx, string(c.scope), mutations...); err != nil {
		return fmt.Errorf("apply %d %s entries: %w", len(mutations), c.scope, err)
	}
	return nil
}
