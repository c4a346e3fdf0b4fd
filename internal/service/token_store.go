package service

import (
	"context"
	"fmt"

	domainauth "github.com/target/spotify-auth/internal/domain/auth"
	"github.com/target/spotify-auth/internal/ports"
)

// TokenStore persists the access token and its expiration as two secret entries.
// Both are written in one batch, so a reader sees either the whole token or none.
type TokenStore struct {
	entries *AuthEntries
}

var _ ports.TokenStore = (*TokenStore)(nil)

// NewTokenStore creates a TokenStore over the auth entries.
func NewTokenStore(entries *AuthEntries) *TokenStore {
	return &TokenStore{entries: entries}
}

// Load returns the persisted token, or nil when either field is missing.
// A corrupted expiration yields a serialization error.
func (s *TokenStore) Load(ctx context.Context) (*domainauth.Token, error) {
	value, ok, err := s.entries.AccessToken.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load access token: %w", err)
	}
	if !ok || value == "" {
		return nil, nil
	}
	expiration, ok, err := s.entries.TokenExpiration.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load token expiration: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &domainauth.Token{Value: value, Expiration: expiration}, nil
}

// Save writes tok, or removes the persisted token when tok is nil.
func (s *TokenStore) Save(ctx context.Context, tok *domainauth.Token) error {
	var err error
	if tok == nil {
		err = s.entries.Secrets.Apply(ctx,
			s.entries.AccessToken.Unassign(),
			s.entries.TokenExpiration.Unassign(),
		)
	} else {
		err = s.entries.Secrets.Apply(ctx,
			s.entries.AccessToken.Assign(tok.Value),
			s.entries.TokenExpiration.Assign(tok.Expiration),
		)
	}
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}
