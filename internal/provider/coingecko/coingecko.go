package coingecko

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/url"
    "strings"
    "time"

    "silverspot/internal/httpx"
    "silverspot/internal/provider"
)

// Name is the source label reported for CoinGecko prices.
const Name = "coingecko"

// Config controls the CoinGecko provider behavior.
type Config struct {
    Name     string
    URL      string // API root, default https://api.coingecko.com/api/v3
    Currency string // vs_currency, default usd
    APIKey   string // optional demo/pro key, sent as a header
}

// Provider fetches silver and gold from the public /simple/price endpoint.
// It needs no credential, so it is always configured.
type Provider struct {
    cfg    Config
    client *httpx.Client
    now    func() time.Time
}

func New(cfg Config, hc *httpx.Client) *Provider {
    if cfg.Name == "" { cfg.Name = Name }
    if cfg.URL == "" { cfg.URL = "https://api.coingecko.com/api/v3" }
    cfg.URL = strings.TrimRight(cfg.URL, "/")
    cfg.Currency = strings.ToLower(strings.TrimSpace(cfg.Currency))
    if cfg.Currency == "" { cfg.Currency = "usd" }
    cfg.APIKey = strings.TrimSpace(cfg.APIKey)
    return &Provider{cfg: cfg, client: hc, now: time.Now}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Configured() bool { return p.client != nil }

func (p *Provider) Fetch(ctx context.Context) (provider.PricePair, error) {
    q := url.Values{}
    q.Set("ids", "gold,silver")
    q.Set("vs_currencies", p.cfg.Currency)
    u := fmt.Sprintf("%s/simple/price?%s", p.cfg.URL, q.Encode())

    var header map[string][]string
    if p.cfg.APIKey != "" {
        header = map[string][]string{"x-cg-demo-api-key": {p.cfg.APIKey}}
    }
    resp, err := p.client.GetJSON(ctx, u, header)
    if err != nil {
        var se *httpx.StatusError
        if errors.As(err, &se) {
            return provider.PricePair{}, provider.StatusError(p.cfg.Name, se.Code, strings.TrimSpace(se.Body))
        }
        return provider.PricePair{}, provider.NetworkError(p.cfg.Name, err)
    }
    defer resp.Body.Close()

    // { "gold": { "usd": 2750.1 }, "silver": { "usd": 31.5 } }
    var body map[string]map[string]any
    dec := json.NewDecoder(resp.Body)
    dec.UseNumber()
    if err := dec.Decode(&body); err != nil {
        return provider.PricePair{}, provider.MalformedError(p.cfg.Name, fmt.Errorf("decode: %w", err))
    }
    silver, err := provider.ParseAmount(body["silver"][p.cfg.Currency])
    if err != nil { return provider.PricePair{}, provider.AmountError(p.cfg.Name, "silver", err) }
    gold, err := provider.ParseAmount(body["gold"][p.cfg.Currency])
    if err != nil { return provider.PricePair{}, provider.AmountError(p.cfg.Name, "gold", err) }

    return provider.NewPricePair(p.cfg.Name, silver, gold, p.now())
}
