package metalsdev

import (
	"context"
	"time"

	"silverspot/internal/provider"
)

// Name is the source label reported for metals.dev prices.
const Name = "metals.dev"

type Config struct {
	Name     string // display/source name, default: metals.dev
	Currency string // default: USD
	Unit     string // default: toz
}

// Provider adapts APIClient to provider.Provider.
type Provider struct {
	cfg    Config
	client *APIClient
	now    func() time.Time
}

func New(cfg Config, client *APIClient) *Provider {
	if cfg.Name == "" {
		cfg.Name = Name
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	if cfg.Unit == "" {
		cfg.Unit = "toz"
	}
	return &Provider{cfg: cfg, client: client, now: time.Now}
}

func (p *Provider) Name() string { return p.cfg.Name }

// Configured is false without an API key.
func (p *Provider) Configured() bool { return p.client != nil && p.client.HasKey() }

func (p *Provider) Fetch(ctx context.Context) (provider.PricePair, error) {
	if !p.Configured() {
		return provider.PricePair{}, provider.NetworkError(p.cfg.Name, ErrNoKey)
	}
	latest, err := p.client.GetLatest(ctx, p.cfg.Currency, p.cfg.Unit)
	if err != nil {
		return provider.PricePair{}, err
	}
	at := p.now()
	if latest.Timestamp != nil {
		at = *latest.Timestamp
	}
	return provider.NewPricePair(p.cfg.Name, latest.Silver, latest.Gold, at)
}
