package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/target/spotify-auth/internal/errors"
	"github.com/target/spotify-auth/internal/ports"
)

// runStoreContract exercises the behavior every KeyValueStore backend shares.
func runStoreContract(t *testing.T, store ports.KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, ok, err := store.Get(ctx, "secrets", "auth.accessToken")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("batch write is visible together", func(t *testing.T) {
		require.NoError(t, store.Apply(ctx, "secrets",
			ports.Mutation{Key: "auth.accessToken", Value: "abc123"},
			ports.Mutation{Key: "auth.tokenExpiration", Value: "1704114000"},
		))

		v, ok, err := store.Get(ctx, "secrets", "auth.accessToken")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "abc123", v)

		keys, err := store.Keys(ctx, "secrets")
		require.NoError(t, err)
		assert.Equal(t, []string{"auth.accessToken", "auth.tokenExpiration"}, keys)
	})

	t.Run("scopes are independent", func(t *testing.T) {
		_, ok, err := store.Get(ctx, "config", "auth.accessToken")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("overwrite and delete in one batch", func(t *testing.T) {
		require.NoError(t, store.Apply(ctx, "secrets",
			ports.Mutation{Key: "auth.accessToken", Value: "def456"},
			ports.Mutation{Key: "auth.tokenExpiration", Delete: true},
		))

		v, ok, err := store.Get(ctx, "secrets", "auth.accessToken")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "def456", v)

		_, ok, err = store.Get(ctx, "secrets", "auth.tokenExpiration")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("deleting a missing key is not an error", func(t *testing.T) {
		require.NoError(t, store.Apply(ctx, "config", ports.Mutation{Key: "playback.deviceId", Delete: true}))
	})

	t.Run("empty key is rejected", func(t *testing.T) {
		err := store.Apply(ctx, "config", ports.Mutation{Key: "", Value: "x"})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))

		_, _, err = store.Get(ctx, "config", "")
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestMemoryStore_Snapshot(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Apply(ctx, "config", ports.Mutation{Key: "auth.port", Value: "58642"}))

	snap := store.Snapshot()
	snap["config"]["auth.port"] = "1"

	v, _, err := store.Get(ctx, "config", "auth.port")
	require.NoError(t, err)
	assert.Equal(t, "58642", v)

	require.NoError(t, store.Apply(ctx, "config", ports.Mutation{Key: "auth.port", Delete: true}))
	assert.Empty(t, store.Snapshot(), "empty scopes are dropped")
}
