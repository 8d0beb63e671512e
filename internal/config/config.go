package config

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"

    "gopkg.in/yaml.v3"
)

type Server struct {
    Port              string `json:"port" yaml:"port"`
    RequestTimeoutSec int    `json:"request_timeout_sec" yaml:"request_timeout_sec"`
    LogLevel          string `json:"log_level" yaml:"log_level"`   // debug|info|warn|error
    LogFormat         string `json:"log_format" yaml:"log_format"` // text|json
}

type Resolver struct {
    CacheTTLSeconds    int     `json:"cache_ttl_sec" yaml:"cache_ttl_sec"`
    ProviderTimeoutSec int     `json:"provider_timeout_sec" yaml:"provider_timeout_sec"`
    FallbackSilver     float64 `json:"fallback_silver" yaml:"fallback_silver"`
    FallbackGold       float64 `json:"fallback_gold" yaml:"fallback_gold"`
}

type MetalsDev struct {
    Enabled               bool   `json:"enabled" yaml:"enabled"`
    APIKey                string `json:"api_key" yaml:"api_key"`
    Endpoint              string `json:"endpoint" yaml:"endpoint"`
    Currency              string `json:"currency" yaml:"currency"`
    Unit                  string `json:"unit" yaml:"unit"`
    MaxRequestsPerMinute  int    `json:"max_requests_per_minute" yaml:"max_requests_per_minute"`
    Burst                 int    `json:"burst" yaml:"burst"`
    MinRequestIntervalSec int    `json:"min_request_interval_sec" yaml:"min_request_interval_sec"`
}

type CoinGecko struct {
    Enabled  bool   `json:"enabled" yaml:"enabled"`
    APIKey   string `json:"api_key" yaml:"api_key"`
    Endpoint string `json:"endpoint" yaml:"endpoint"`
    Currency string `json:"currency" yaml:"currency"`
}

type Config struct {
    Server    Server    `json:"server" yaml:"server"`
    Resolver  Resolver  `json:"resolver" yaml:"resolver"`
    MetalsDev MetalsDev `json:"metalsdev" yaml:"metalsdev"`
    CoinGecko CoinGecko `json:"coingecko" yaml:"coingecko"`
}

func Default() Config {
    return Config{
        Server: Server{Port: "8080", RequestTimeoutSec: 10, LogLevel: "info", LogFormat: "text"},
        Resolver: Resolver{
            CacheTTLSeconds:    3600,
            ProviderTimeoutSec: 8,
            FallbackSilver:     31.5,
            FallbackGold:       2750,
        },
        MetalsDev: MetalsDev{
            Enabled:  true,
            Endpoint: "https://api.metals.dev",
            Currency: "USD",
            Unit:     "toz",
            // metals.dev free tier: 100 calls/month
            MaxRequestsPerMinute: 2,
            Burst:                2,
        },
        CoinGecko: CoinGecko{
            Enabled:  true,
            Endpoint: "https://api.coingecko.com/api/v3",
            Currency: "usd",
        },
    }
}

// Load reads config from path. If path is empty, config.json, config.yaml
// and config.yml are tried in the working directory; if none exists the
// defaults are used. Files ending in .yaml/.yml are parsed as YAML, anything
// else as JSON. Environment variables override select fields for secrecy.
func Load(path string) (Config, error) {
    cfg := Default()
    if path == "" {
        for _, candidate := range []string{"config.json", "config.yaml", "config.yml"} {
            if _, err := os.Stat(candidate); err == nil {
                path = candidate
                break
            }
        }
    }
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil && !errors.Is(err, os.ErrNotExist) {
            return cfg, fmt.Errorf("read config: %w", err)
        }
        if err == nil {
            if err := decode(path, b, &cfg); err != nil {
                return cfg, fmt.Errorf("parse config: %w", err)
            }
        }
    }
    applyEnv(&cfg)
    if err := cfg.Validate(); err != nil {
        return cfg, err
    }
    return cfg, nil
}

func decode(path string, b []byte, cfg *Config) error {
    switch strings.ToLower(filepath.Ext(path)) {
    case ".yaml", ".yml":
        return yaml.Unmarshal(b, cfg)
    default:
        return json.Unmarshal(b, cfg)
    }
}

// Validate rejects settings the resolver cannot honor.
func (c Config) Validate() error {
    var errs []error
    if c.Resolver.CacheTTLSeconds <= 0 {
        errs = append(errs, fmt.Errorf("resolver.cache_ttl_sec must be positive, got %d", c.Resolver.CacheTTLSeconds))
    }
    if c.Resolver.ProviderTimeoutSec <= 0 {
        errs = append(errs, fmt.Errorf("resolver.provider_timeout_sec must be positive, got %d", c.Resolver.ProviderTimeoutSec))
    }
    if c.Resolver.FallbackSilver <= 0 || c.Resolver.FallbackGold <= 0 {
        errs = append(errs, fmt.Errorf("resolver fallback prices must be positive, got silver=%v gold=%v", c.Resolver.FallbackSilver, c.Resolver.FallbackGold))
    }
    if c.Server.Port == "" {
        errs = append(errs, errors.New("server.port is required"))
    }
    return errors.Join(errs...)
}

func applyEnv(cfg *Config) {
    if v := os.Getenv("PORT"); v != "" { cfg.Server.Port = v }
    if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Server.RequestTimeoutSec = x }
    }
    if v := os.Getenv("LOG_LEVEL"); v != "" { cfg.Server.LogLevel = strings.ToLower(v) }
    if v := os.Getenv("LOG_FORMAT"); v != "" { cfg.Server.LogFormat = strings.ToLower(v) }

    if v := os.Getenv("CACHE_TTL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Resolver.CacheTTLSeconds = x }
    }
    if v := os.Getenv("PROVIDER_TIMEOUT_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Resolver.ProviderTimeoutSec = x }
    }

    if v := os.Getenv("METALS_API_KEY"); v != "" { cfg.MetalsDev.APIKey = v }
    if v := os.Getenv("METALS_ENDPOINT"); v != "" { cfg.MetalsDev.Endpoint = v }
    if v := os.Getenv("METALS_MAX_RPM"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.MetalsDev.MaxRequestsPerMinute = x }
    }
    if v := os.Getenv("METALS_BURST"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.MetalsDev.Burst = x }
    }
    if v := os.Getenv("METALS_MIN_INTERVAL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.MetalsDev.MinRequestIntervalSec = x }
    }

    if v := os.Getenv("COINGECKO_ENABLED"); v != "" {
        switch strings.ToLower(v) {
        case "1","true","yes","y": cfg.CoinGecko.Enabled = true
        case "0","false","no","n": cfg.CoinGecko.Enabled = false
        }
    }
    if v := os.Getenv("COINGECKO_API_KEY"); v != "" { cfg.CoinGecko.APIKey = v }
    if v := os.Getenv("COINGECKO_ENDPOINT"); v != "" { cfg.CoinGecko.Endpoint = v }
}
