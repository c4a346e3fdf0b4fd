package data

import (
	apperrors "github.com/target/spotify-auth/internal/errors"
	"github.com/target/spotify-auth/internal/ports"
)

func validateKey(scope, key string) error {
	if scope == "" {
		return apperrors.ValidationField("scope", "scope cannot be empty")
	}
	if key == "" {
		return apperrors.ValidationField("key", "key cannot be empty")
	}
	return nil
}

func validateMutations(scope string, mutations []ports.Mutation) error {
	for _, m := range mutations {
		if err := validateKey(scope, m.Key); err != nil {
			return err
		}
	}
	return nil
}
