package ratelimit

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/require"

    "silverspot/internal/provider"
)

type countingProvider struct{ calls int }

func (c *countingProvider) Name() string     { return "metals.dev" }
func (c *countingProvider) Configured() bool { return true }
func (c *countingProvider) Fetch(context.Context) (provider.PricePair, error) {
    c.calls++
    return provider.NewPricePair("metals.dev", 31.5, 2750, time.Now())
}

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestTokenBucketProvider_FailsFastWhenEmpty(t *testing.T) {
    clk := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
    tb := PerMinute(1, 2)
    tb.now = clk.now
    tb.last = clk.t
    inner := &countingProvider{}
    p := &TokenBucketProvider{P: inner, TB: tb}

    // burst of two
    _, err := p.Fetch(t.Context())
    require.NoError(t, err)
    _, err = p.Fetch(t.Context())
    require.NoError(t, err)

    _, err = p.Fetch(t.Context())
    require.Error(t, err)
    require.Equal(t, provider.KindThrottled, provider.KindOf(err))
    require.Equal(t, 2, inner.calls)

    // one token per minute
    clk.advance(61 * time.Second)
    _, err = p.Fetch(t.Context())
    require.NoError(t, err)
    require.Equal(t, 3, inner.calls)
}

func TestMinInterval_RefusesInsideInterval(t *testing.T) {
    clk := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
    inner := &countingProvider{}
    p := &MinInterval{P: inner, Interval: 10 * time.Minute, now: clk.now}

    _, err := p.Fetch(t.Context())
    require.NoError(t, err)

    clk.advance(time.Minute)
    _, err = p.Fetch(t.Context())
    require.Equal(t, provider.KindThrottled, provider.KindOf(err))
    require.Contains(t, err.Error(), "9m0s")

    clk.advance(9 * time.Minute)
    _, err = p.Fetch(t.Context())
    require.NoError(t, err)
    require.Equal(t, 2, inner.calls)
}

func TestWrap(t *testing.T) {
    inner := &countingProvider{}
    require.Same(t, provider.Provider(inner), Wrap(inner, 0, 0, 0))

    tb, ok := Wrap(inner, 5, 1, time.Minute).(*TokenBucketProvider)
    require.True(t, ok)
    require.Equal(t, "metals.dev", tb.Name())
    require.True(t, tb.Configured())

    mi, ok := Wrap(inner, 0, 0, time.Minute).(*MinInterval)
    require.True(t, ok)
    require.Equal(t, time.Minute, mi.Interval)
}
