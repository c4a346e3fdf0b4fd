package auth

// Package auth contains domain-level types for the Spotify token lifecycle.
// It is pure and free of framework/adapter concerns.

import "time"

// Token is an opaque bearer token with its absolute expiration.
// Tokens are values: a refresh replaces the whole Token, it never mutates one.
type Token struct {
	Value      string
	Expiration time.Time
}

// NewToken builds a Token that expires expiresIn after issuedAt.
func NewToken(value string, issuedAt time.Time, expiresIn time.Duration) Token {
	return Token{Value: value, Expiration: issuedAt.Add(expiresIn)}
}

// IsExpired reports whether the token is expired at now.
// A token is already expired at the exact expiration instant.
func (t Token) IsExpired(now time.Time) bool {
	return !now.Before(t.Expiration)
}

// ExpiresWithin reports whether the token expires before now+margin.
func (t Token) ExpiresWithin(now time.Time, margin time.Duration) bool {
	return t.IsExpired(now.Add(margin))
}

// Valid reports whether the token carries a value and stays valid for at least margin.
func (t Token) Valid(now time.Time, margin time.Duration) bool {
	return t.Value != "" && !t.Expiration.IsZero() && !t.ExpiresWithin(now, margin)
}

// Session describes one browser-driven authorization attempt.
// ID is only used to correlate logs and metrics; State is the anti-forgery nonce.
type Session struct {
	ID          string
	State       string
	RedirectURL string
	StartedAt   time.Time
}
