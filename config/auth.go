package config

import "time"

// AuthConfig controls the browser-based authorization session.
type AuthConfig struct {
	// LockTimeout bounds how long a caller waits for another session to finish.
	LockTimeout time.Duration `env:"LOCK_TIMEOUT" envDefault:"10s"`

	// CallbackTimeout bounds how long a session waits for the user to log in.
	CallbackTimeout time.Duration `env:"CALLBACK_TIMEOUT" envDefault:"1m"`

	// ExpiryMargin treats tokens expiring within the margin as expired.
	ExpiryMargin time.Duration `env:"EXPIRY_MARGIN" envDefault:"30s"`

	// OpenBrowser launches the system browser; false only logs the URL.
	OpenBrowser bool `env:"OPEN_BROWSER" envDefault:"true"`
}

// Sanitize applies guardrails to auth configuration values.
func (c *AuthConfig) Sanitize() {
	if c.LockTimeout <= 0 {
		c.LockTimeout = 10 * time.Second
	}
	if c.CallbackTimeout <= 0 {
		c.CallbackTimeout = time.Minute
	}
	if c.ExpiryMargin < 0 {
		c.ExpiryMargin = 0
	}
}
