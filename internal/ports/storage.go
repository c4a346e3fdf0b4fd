package ports

import "context"

// Mutation is a single write applied by KeyValueStore.Apply.
type Mutation struct {
	Key    string
	Value  string
	Delete bool
}

// KeyValueStore persists string values grouped by scope (config, secrets, state).
type KeyValueStore interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, scope, key string) (string, bool, error)
	// Keys lists the keys present in scope.
	Keys(ctx context.Context, scope string) ([]string, error)
	// Apply writes all mutations for scope as one batch; readers never observe a partial batch.
	Apply(ctx context.Context, scope string, mutations ...Mutation) error
}
