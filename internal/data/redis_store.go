package data

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/target/spotify-auth/internal/ports"
)

// DefaultRedisKeyPrefix namespaces the hashes written by RedisStore.
const DefaultRedisKeyPrefix = "spotify-auth:config:"

// RedisStore keeps one hash per scope. Apply runs in a MULTI/EXEC transaction so
// a batch is visible all at once.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

var _ ports.KeyValueStore = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore. An empty prefix uses DefaultRedisKeyPrefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) hashKey(scope string) string {
	return r.prefix + scope
}

// Get returns the value stored under key in scope.
func (r *RedisStore) Get(ctx context.Context, scope, key string) (string, bool, error) {
	if err := validateKey(scope, key); err != nil {
		return "", false, err
	}
	v, err := r.client.HGet(ctx, r.hashKey(scope), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis hget: %w", err)
	}
	return v, true, nil
}

// Keys lists the keys of scope in sorted order.
func (r *RedisStore) Keys(ctx context.Context, scope string) ([]string, error) {
	keys, err := r.client.HKeys(ctx, r.hashKey(scope)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hkeys: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Apply writes all mutations in one transaction.
func (r *RedisStore) Apply(ctx context.Context, scope string, mutations ...ports.Mutation) error {
	if err := validateMutations(scope, mutations); err != nil {
		return err
	}
	if len(mutations) == 0 {
		return nil
	}
	hash := r.hashKey(scope)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, m := range mutations {
			if m.Delete {
				pipe.HDel(ctx, hash, m.Key)
				continue
			}
			pipe.HSet(ctx, hash, m.Key, m.Value)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis apply %d mutations: %w", len(mutations), err)
	}
	return nil
}

// Health pings the redis connection.
func (r *RedisStore) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
