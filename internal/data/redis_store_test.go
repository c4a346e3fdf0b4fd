package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/spotify-auth/internal/ports"
	"github.com/target/spotify-auth/internal/testutil"
)

func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	runStoreContract(t, NewRedisStore(client, ""))
}

func TestRedisStore_HashPerScope(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisStore(client, "test:")
	require.NoError(t, store.Apply(ctx, "config", ports.Mutation{Key: "auth.port", Value: "58642"}))

	v, err := client.HGet(ctx, "test:config", "auth.port").Result()
	require.NoError(t, err)
	assert.Equal(t, "58642", v)
	require.NoError(t, store.Health(ctx))
}
