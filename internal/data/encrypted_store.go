package data

import (
	"context"
	"fmt"

	"github.com/target/spotify-auth/internal/data/cryptoutil"
	"github.com/target/spotify-auth/internal/ports"
)

// EncryptedStore encrypts values of selected scopes before handing them to the wrapped store.
// Values of those scopes written before encryption was enabled are read back unchanged
// and encrypted on their next write.
type EncryptedStore struct {
	inner  ports.KeyValueStore
	enc    cryptoutil.Encryptor
	scopes map[string]struct{}
}

var _ ports.KeyValueStore = (*EncryptedStore)(nil)

// NewEncryptedStore wraps inner, encrypting the given scopes with enc.
func NewEncryptedStore(inner ports.KeyValueStore, enc cryptoutil.Encryptor, scopes ...string) *EncryptedStore {
	set := make(map[string]struct{}, len(scopes))
	for _, s := range scopes {
		set[s] = struct{}{}
	}
	return &EncryptedStore{inner: inner, enc: enc, scopes: set}
}

func (e *EncryptedStore) encrypted(scope string) bool {
	_, ok := e.scopes[scope]
	return ok
}

// Get returns the decrypted value.
func (e *EncryptedStore) Get(ctx context.Context, scope, key string) (string, bool, error) {
	v, ok, err := e.inner.Get(ctx, scope, key)
	if err != nil || !ok || !e.encrypted(scope) || !cryptoutil.HasEnvelope(v) {
		return v, ok, err
	}
	pt, err := e.enc.Decrypt(v)
	if err != nil {
		return "", false, fmt.Errorf("decrypt %s/%s: %w", scope, key, err)
	}
	return string(pt), true, nil
}

// Keys lists the keys of scope; keys are stored in plaintext.
func (e *EncryptedStore) Keys(ctx context.Context, scope string) ([]string, error) {
	return e.inner.Keys(ctx, scope)
}

// Apply encrypts the values of the batch and forwards it as one batch.
func (e *EncryptedStore) Apply(ctx context.Context, scope string, mutations ...ports.Mutation) error {
	if !e.encrypted(scope) {
		return e.inner.Apply(ctx, scope, mutations...)
	}
	sealed := make([]ports.Mutation, len(mutations))
	for i, m := range mutations {
		sealed[i] = m
		if m.Delete {
			continue
		}
		ct, err := e.enc.Encrypt([]byte(m.Value))
		if err != nil {
			return fmt.Errorf("encrypt %s/%s: %w", scope, m.Key, err)
		}
		sealed[i].Value = ct
	}
	return e.inner.Apply(ctx, scope, sealed...)
}
