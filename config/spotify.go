package config

import (
	"strings"
)

const (
	// DefaultClientID is the application registered for the implicit grant.
	DefaultClientID = "902fe6b9a4b6421caf88ee01e809939a"
	// DefaultCallbackPort is the local port registered as redirect URI.
	DefaultCallbackPort = 58642
	minCallbackPort     = 1024
	maxCallbackPort     = 65535
)

// SpotifyConfig contains the Spotify client settings. The client ID and callback
// port seed the defaults of the persisted auth entries.
type SpotifyConfig struct {
	ClientID     string   `env:"CLIENT_ID"     envDefault:"902fe6b9a4b6421caf88ee01e809939a"`
	CallbackPort int      `env:"CALLBACK_PORT" envDefault:"58642"`
	CallbackHost string   `env:"CALLBACK_HOST" envDefault:"127.0.0.1"`
	AuthURL      string   `env:"AUTH_URL"      envDefault:"https://accounts.spotify.com/authorize"`
	DiscoveryURL string   `env:"DISCOVERY_URL"`
	Scopes       []string `env:"SCOPES"        envDefault:"user-modify-playback-state user-read-playback-state" envSeparator:" "`
	APIBaseURL   string   `env:"API_BASE_URL"  envDefault:"https://api.spotify.com/v1"`
	Market       string   `env:"MARKET"        envDefault:"DE"`

	// DeviceSelector is a JMESPath expression that picks a device when none is configured.
	DeviceSelector string `env:"DEVICE_SELECTOR"`
}

// Sanitize applies guardrails to Spotify configuration values.
func (c *SpotifyConfig) Sanitize() {
	c.ClientID = strings.TrimSpace(c.ClientID)
	if c.ClientID == "" {
		c.ClientID = DefaultClientID
	}
	if c.CallbackPort < minCallbackPort || c.CallbackPort > maxCallbackPort {
		c.CallbackPort = DefaultCallbackPort
	}
	if c.CallbackHost = strings.TrimSpace(c.CallbackHost); c.CallbackHost == "" {
		c.CallbackHost = "127.0.0.1"
	}
	c.AuthURL = strings.TrimSpace(c.AuthURL)
	c.DiscoveryURL = strings.TrimSpace(c.DiscoveryURL)
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	c.Market = strings.ToUpper(strings.TrimSpace(c.Market))
	c.DeviceSelector = strings.TrimSpace(c.DeviceSelector)

	scopes := c.Scopes[:0]
	for _, s := range c.Scopes {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	c.Scopes = scopes
}
