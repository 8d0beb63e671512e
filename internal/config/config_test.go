package config

import (
    "os"
    "path/filepath"
    "testing"

    "github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
    t.Helper()
    p := filepath.Join(t.TempDir(), name)
    require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
    return p
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
    cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
    require.NoError(t, err)
    require.Equal(t, Default(), cfg)
    require.Equal(t, 3600, cfg.Resolver.CacheTTLSeconds)
    require.Equal(t, 8, cfg.Resolver.ProviderTimeoutSec)
    require.Empty(t, cfg.MetalsDev.APIKey)
}

func TestLoad_JSONOverlay(t *testing.T) {
    p := writeFile(t, "config.json", `{
        "server": {"port": "9000"},
        "resolver": {"cache_ttl_sec": 600},
        "coingecko": {"enabled": false}
    }`)
    cfg, err := Load(p)
    require.NoError(t, err)
    require.Equal(t, "9000", cfg.Server.Port)
    require.Equal(t, 600, cfg.Resolver.CacheTTLSeconds)
    require.False(t, cfg.CoinGecko.Enabled)
    // untouched fields keep their defaults
    require.Equal(t, 31.5, cfg.Resolver.FallbackSilver)
}

func TestLoad_YAMLOverlay(t *testing.T) {
    p := writeFile(t, "config.yaml", `
server:
  log_format: json
resolver:
  fallback_silver: 30
  fallback_gold: 2600
metalsdev:
  max_requests_per_minute: 0
  min_request_interval_sec: 120
`)
    cfg, err := Load(p)
    require.NoError(t, err)
    require.Equal(t, "json", cfg.Server.LogFormat)
    require.Equal(t, 30.0, cfg.Resolver.FallbackSilver)
    require.Equal(t, 2600.0, cfg.Resolver.FallbackGold)
    require.Equal(t, 0, cfg.MetalsDev.MaxRequestsPerMinute)
    require.Equal(t, 120, cfg.MetalsDev.MinRequestIntervalSec)
}

func TestLoad_EnvOverrides(t *testing.T) {
    t.Setenv("METALS_API_KEY", "secret")
    t.Setenv("PORT", "7070")
    t.Setenv("CACHE_TTL_SEC", "120")
    t.Setenv("PROVIDER_TIMEOUT_SEC", "3")
    t.Setenv("COINGECKO_ENABLED", "no")
    t.Setenv("LOG_LEVEL", "DEBUG")

    cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
    require.NoError(t, err)
    require.Equal(t, "secret", cfg.MetalsDev.APIKey)
    require.Equal(t, "7070", cfg.Server.Port)
    require.Equal(t, 120, cfg.Resolver.CacheTTLSeconds)
    require.Equal(t, 3, cfg.Resolver.ProviderTimeoutSec)
    require.False(t, cfg.CoinGecko.Enabled)
    require.Equal(t, "debug", cfg.Server.LogLevel)
}

func TestLoad_ParseError(t *testing.T) {
    p := writeFile(t, "config.json", `{"server":`)
    _, err := Load(p)
    require.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
    cfg := Default()
    require.NoError(t, cfg.Validate())

    cfg.Resolver.FallbackGold = 0
    cfg.Resolver.CacheTTLSeconds = -1
    err := cfg.Validate()
    require.ErrorContains(t, err, "fallback prices must be positive")
    require.ErrorContains(t, err, "cache_ttl_sec must be positive")
}
