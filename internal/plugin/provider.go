package plugin

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/target/spotify-auth/internal/configstore"
	"github.com/target/spotify-auth/internal/ports"
)

const (
	// ProviderName is the display name of the provider plugin.
	ProviderName = "Spotify Provider"
	// ProviderNamespace prefixes the stored keys of the provider entries.
	ProviderNamespace = "spotifyProvider"
	// DefaultMarket is used when no market is configured.
	DefaultMarket = "DE"
)

// MarketSerializer stores an ISO 3166-1 alpha-2 region.
type MarketSerializer struct{}

func (MarketSerializer) Serialize(r language.Region) string { return r.String() }

func (MarketSerializer) Deserialize(s string) (language.Region, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 2 {
		return language.Region{}, fmt.Errorf("market must be a two-letter country code, got %q", s)
	}
	r, err := language.ParseRegion(s)
	if err != nil {
		return language.Region{}, fmt.Errorf("unknown market %q", s)
	}
	if !r.IsCountry() {
		return language.Region{}, fmt.Errorf("market %q is not a country", s)
	}
	return r, nil
}

// Provider holds the settings shared by Spotify song providers.
type Provider struct {
	Config *configstore.Config
	Market *configstore.SerializedEntry[language.Region]
}

var _ Plugin = (*Provider)(nil)

// NewProvider declares the market entry; defaultMarket falls back to DefaultMarket.
func NewProvider(store ports.KeyValueStore, defaultMarket string) (*Provider, error) {
	if defaultMarket == "" {
		defaultMarket = DefaultMarket
	}
	def, err := MarketSerializer{}.Deserialize(defaultMarket)
	if err != nil {
		return nil, fmt.Errorf("default market: %w", err)
	}
	cfg := configstore.New(store, configstore.ScopeConfig, ProviderNamespace)
	return &Provider{
		Config: cfg,
		Market: configstore.NewSerializedEntry(cfg, configstore.EntryOptions[language.Region]{
			Key:         "market",
			Description: "Country code of your Spotify account",
			Serializer:  MarketSerializer{},
			Checker:     configstore.NonNull[language.Region](),
			Default:     &def,
		}),
	}, nil
}

func (p *Provider) Name() string { return ProviderName }

func (p *Provider) Description() string { return "Settings shared by the Spotify song providers." }

func (p *Provider) ConfigEntries() []configstore.Entry { return []configstore.Entry{p.Market} }

func (p *Provider) SecretEntries() []configstore.Entry { return nil }

// Initialize verifies that the stored market is readable.
func (p *Provider) Initialize(ctx context.Context, w ports.InitStateWriter) error {
	w.State("Checking market")
	market, err := p.MarketCode(ctx)
	if err != nil {
		return &InitializationError{Plugin: ProviderName, Reason: "Invalid market", Cause: err}
	}
	w.State("Using market " + market)
	return nil
}

// MarketCode returns the configured market as a two-letter code.
func (p *Provider) MarketCode(ctx context.Context) (string, error) {
	r, _, err := p.Market.Get(ctx)
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

func (p *Provider) Close() error { return nil }
