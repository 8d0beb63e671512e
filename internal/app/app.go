// Package app wires config into the logger, providers and resolver shared by
// the server and the fetch CLI.
package app

import (
    "io"
    "log/slog"
    "strings"
    "time"

    "silverspot/internal/config"
    "silverspot/internal/httpx"
    "silverspot/internal/metrics"
    "silverspot/internal/provider"
    "silverspot/internal/provider/cache"
    "silverspot/internal/provider/coingecko"
    "silverspot/internal/provider/metalsdev"
    "silverspot/internal/provider/ratelimit"
    "silverspot/internal/spot"
)

// NewLogger builds a text or JSON slog logger at the configured level.
func NewLogger(cfg config.Server, w io.Writer) *slog.Logger {
    opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
    if strings.EqualFold(cfg.LogFormat, "json") {
        return slog.New(slog.NewJSONHandler(w, opts))
    }
    return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "debug": return slog.LevelDebug
    case "warn", "warning": return slog.LevelWarn
    case "error": return slog.LevelError
    default: return slog.LevelInfo
    }
}

// Providers returns the enabled providers in priority order: metals.dev, then
// CoinGecko. metals.dev stays in the list without a key so that it is
// reported as skipped.
func Providers(cfg config.Config, log *slog.Logger) []provider.Provider {
    timeout := time.Duration(cfg.Resolver.ProviderTimeoutSec) * time.Second
    hc := httpx.New(timeout)

    var providers []provider.Provider
    if cfg.MetalsDev.Enabled {
        if cfg.MetalsDev.APIKey == "" {
            log.Warn("metalsdev.enabled=true but METALS_API_KEY not set; provider will be skipped")
        }
        opts := []metalsdev.APIClientOption{metalsdev.WithHTTPClient(hc)}
        if cfg.MetalsDev.Endpoint != "" {
            opts = append(opts, metalsdev.WithBaseURL(cfg.MetalsDev.Endpoint))
        }
        client, err := metalsdev.NewAPIClient(cfg.MetalsDev.APIKey, opts...)
        if err != nil {
            log.Error("metals.dev client", "error", err)
        } else {
            var p provider.Provider = metalsdev.New(metalsdev.Config{
                Currency: cfg.MetalsDev.Currency,
                Unit:     cfg.MetalsDev.Unit,
            }, client)
            p = ratelimit.Wrap(p,
                cfg.MetalsDev.MaxRequestsPerMinute,
                cfg.MetalsDev.Burst,
                time.Duration(cfg.MetalsDev.MinRequestIntervalSec)*time.Second)
            providers = append(providers, p)
        }
    }
    if cfg.CoinGecko.Enabled {
        providers = append(providers, coingecko.New(coingecko.Config{
            URL:      cfg.CoinGecko.Endpoint,
            Currency: cfg.CoinGecko.Currency,
            APIKey:   cfg.CoinGecko.APIKey,
        }, hc))
    }
    if len(providers) == 0 {
        log.Warn("no price providers enabled; fallback prices will be served")
    }
    return providers
}

// NewResolver builds the resolver for cfg over providers.
func NewResolver(cfg config.Config, providers []provider.Provider, m *metrics.Metrics, log *slog.Logger) *spot.Resolver {
    return spot.New(providers, cache.New(),
        spot.WithTTL(time.Duration(cfg.Resolver.CacheTTLSeconds)*time.Second),
        spot.WithProviderTimeout(time.Duration(cfg.Resolver.ProviderTimeoutSec)*time.Second),
        spot.WithFallback(cfg.Resolver.FallbackSilver, cfg.Resolver.FallbackGold),
        spot.WithLogger(log),
        spot.WithMetrics(m),
    )
}

// ensure httpx.Client can back the metals.dev client
var _ metalsdev.HTTPClient = (*httpx.Client)(nil)

