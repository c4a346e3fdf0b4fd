package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/target/spotify-auth/internal/domain/auth"
)

// BrowserOpener opens a URL in the user's browser.
// Opening is fire-and-forget but failures to launch must be reported.
type BrowserOpener interface {
	OpenURL(url string) error
}

// InitStateWriter receives human-readable progress while a plugin initializes.
type InitStateWriter interface {
	State(msg string)
	Warning(msg string)
}

// AuthorizeURLBuilder computes the provider authorization URL for one session.
type AuthorizeURLBuilder interface {
	AuthorizeURL(clientID, redirectURL, state string) (string, error)
}

// CallbackReceiver is a single-use local listener that captures the provider redirect.
type CallbackReceiver interface {
	// RedirectURL is the local URL advertised to the provider.
	RedirectURL() string
	// WaitForToken blocks until the callback resolves or timeout elapses.
	// The listener is shut down before it returns.
	WaitForToken(ctx context.Context, timeout time.Duration) (domainauth.Token, error)
	// Close releases the listener; safe to call more than once.
	Close() error
}

// ReceiverFactory binds a new CallbackReceiver for one authorization session.
type ReceiverFactory func(port int, expectedState string) (CallbackReceiver, error)

// TokenStore persists the current token.
type TokenStore interface {
	// Load returns nil when no complete token is persisted.
	Load(ctx context.Context) (*domainauth.Token, error)
	// Save persists tok, or clears the persisted token when tok is nil.
	Save(ctx context.Context, tok *domainauth.Token) error
}

// TokenProvider hands out a currently valid access token.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}
