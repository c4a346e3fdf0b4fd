package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/spotify-auth/internal/data"
	domainauth "github.com/target/spotify-auth/internal/domain/auth"
	apperrors "github.com/target/spotify-auth/internal/errors"
	"github.com/target/spotify-auth/internal/ports"
)

func newTestTokenStore(t *testing.T) (*TokenStore, *data.MemoryStore) {
	t.Helper()
	kv := data.NewMemoryStore()
	return NewTokenStore(NewAuthEntries(kv, AuthEntryOptions{})), kv
}

func TestTokenStore_LoadEmpty(t *testing.T) {
	store, _ := newTestTokenStore(t)

	tok, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, tok)
}

func TestTokenStore_RoundTrip(t *testing.T) {
	store, kv := newTestTokenStore(t)
	ctx := context.Background()
	expiration := time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, &domainauth.Token{Value: "abc123", Expiration: expiration}))

	tok, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "abc123", tok.Value)
	assert.True(t, tok.Expiration.Equal(expiration))

	secrets := kv.Snapshot()["secrets"]
	assert.Equal(t, "abc123", secrets["auth.accessToken"])
	assert.Equal(t, "1704114000", secrets["auth.tokenExpiration"])
}

func TestTokenStore_TruncatesToSeconds(t *testing.T) {
	store, _ := newTestTokenStore(t)
	ctx := context.Background()
	expiration := time.Unix(1704114000, 900_000_000)

	require.NoError(t, store.Save(ctx, &domainauth.Token{Value: "v", Expiration: expiration}))

	tok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1704114000), tok.Expiration.Unix())
	assert.Zero(t, tok.Expiration.Nanosecond())
}

func TestTokenStore_SaveNilClears(t *testing.T) {
	store, kv := newTestTokenStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &domainauth.Token{Value: "v", Expiration: time.Unix(100, 0)}))

	require.NoError(t, store.Save(ctx, nil))

	tok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, tok)
	assert.Empty(t, kv.Snapshot()["secrets"])
}

func TestTokenStore_PartialTokenIsAbsent(t *testing.T) {
	tests := []struct {
		name      string
		mutations []ports.Mutation
	}{
		{name: "value only", mutations: []ports.Mutation{{Key: "auth.accessToken", Value: "v"}}},
		{name: "expiration only", mutations: []ports.Mutation{{Key: "auth.tokenExpiration", Value: "100"}}},
		{name: "empty value", mutations: []ports.Mutation{
			{Key: "auth.accessToken", Value: ""},
			{Key: "auth.tokenExpiration", Value: "100"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, kv := newTestTokenStore(t)
			ctx := context.Background()
			require.NoError(t, kv.Apply(ctx, "secrets", tt.mutations...))

			tok, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Nil(t, tok)
		})
	}
}

func TestTokenStore_CorruptedExpiration(t *testing.T) {
	store, kv := newTestTokenStore(t)
	ctx := context.Background()
	require.NoError(t, kv.Apply(ctx, "secrets",
		ports.Mutation{Key: "auth.accessToken", Value: "v"},
		ports.Mutation{Key: "auth.tokenExpiration", Value: "tomorrow"},
	))

	tok, err := store.Load(ctx)
	assert.Nil(t, tok)
	require.Error(t, err)
	assert.True(t, apperrors.IsSerialization(err))
	assert.Equal(t, "tokenExpiration", apperrors.GetField(err))
}
