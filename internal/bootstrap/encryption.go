package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/target/spotify-auth/internal/configstore"
	"github.com/target/spotify-auth/internal/data"
	"github.com/target/spotify-auth/internal/data/cryptoutil"
	"github.com/target/spotify-auth/internal/ports"
)

// CreateEncryptor creates an AES-GCM encryptor from a base64 encoded 32 byte key.
// Returns nil if the key is empty; the secrets scope is then stored as plaintext.
//
//nolint:ireturn // Returning interface is intentional for encryptor abstraction
func CreateEncryptor(key string, logger *slog.Logger) (cryptoutil.Encryptor, error) {
	if key == "" {
		if logger != nil {
			logger.Warn("encryption key is empty, secrets are stored unencrypted")
		}
		return nil, nil
	}

	keyBytes, err := cryptoutil.ParseKey(key)
	if err != nil {
		return nil, fmt.Errorf("parse encryption key: %w", err)
	}
	return cryptoutil.NewAESGCMEncryptor(keyBytes)
}

// encryptSecrets wraps store so values in the secrets scope are encrypted at rest.
//
//nolint:ireturn // callers only need the KeyValueStore port.
func encryptSecrets(store ports.KeyValueStore, key string, logger *slog.Logger) (ports.KeyValueStore, error) {
	enc, err := CreateEncryptor(key, logger)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return store, nil
	}
	return data.NewEncryptedStore(store, enc, string(configstore.ScopeSecrets)), nil
}
