package main

import (
    "bytes"
    "context"
    "encoding/json"
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/require"

    "silverspot/internal/provider"
)

type fake struct {
    name       string
    configured bool
    err        error
    block      bool
}

func (f fake) Name() string     { return f.name }
func (f fake) Configured() bool { return f.configured }
func (f fake) Fetch(ctx context.Context) (provider.PricePair, error) {
    if f.block {
        <-ctx.Done()
        return provider.PricePair{}, provider.NetworkError(f.name, ctx.Err())
    }
    if f.err != nil { return provider.PricePair{}, f.err }
    return provider.NewPricePair(f.name, 31.25, 2700, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestProbe(t *testing.T) {
    t.Parallel()

    // Arrange
    ps := []provider.Provider{
        fake{name: "metals.dev"},
        fake{name: "coingecko", configured: true},
        fake{name: "broken", configured: true, err: provider.StatusError("broken", 502, "")},
        fake{name: "slow", configured: true, block: true},
    }

    // Act
    reports := probe(t.Context(), ps, 50*time.Millisecond)

    // Assert
    require.Len(t, reports, 4)
    require.False(t, reports[0].Configured)
    require.Equal(t, 31.25, reports[1].Silver)
    require.Equal(t, "2025-01-01T00:00:00Z", reports[1].FetchedAt)
    require.Equal(t, string(provider.KindHTTPStatus), reports[2].Kind)
    require.Equal(t, string(provider.KindNetwork), reports[3].Kind)

    var buf bytes.Buffer
    writeTable(&buf, reports)
    require.Contains(t, buf.String(), "skipped (not configured)")
    require.Contains(t, buf.String(), "status 502")

    out := filepath.Join(t.TempDir(), "probe.json")
    require.NoError(t, writeJSON(out, reports))
    b, err := os.ReadFile(out)
    require.NoError(t, err)
    var back []report
    require.NoError(t, json.Unmarshal(b, &back))
    require.Equal(t, reports, back)
}
