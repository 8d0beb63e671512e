package ratelimit

import (
    "context"
    "errors"
    "sync"
    "time"

    "silverspot/internal/provider"
)

// errNoTokens is wrapped into a throttled FetchError when the bucket is empty.
var errNoTokens = errors.New("no request tokens left")

// TokenBucket provides a stdlib-only token bucket limiter.
// - rate: tokens per second
// - capacity: maximum tokens the bucket can hold (burst)
type TokenBucket struct {
    rate     float64
    capacity float64

    mu     sync.Mutex
    tokens float64
    last   time.Time
    now    func() time.Time
}

func NewTokenBucket(tokensPerSecond float64, burst int) *TokenBucket {
    if tokensPerSecond <= 0 { tokensPerSecond = 0.0000001 }
    if burst <= 0 { burst = 1 }
    return &TokenBucket{
        rate:     tokensPerSecond,
        capacity: float64(burst),
        tokens:   float64(burst), // start full to allow an initial burst
        last:     time.Now(),
        now:      time.Now,
    }
}

// PerMinute builds a bucket allowing rpm calls per minute with the given burst.
func PerMinute(rpm, burst int) *TokenBucket {
    return NewTokenBucket(float64(rpm)/60.0, burst)
}

// Allow takes one token if available without blocking.
func (tb *TokenBucket) Allow() bool {
    tb.mu.Lock()
    defer tb.mu.Unlock()
    now := tb.now()
    // Refill
    elapsed := now.Sub(tb.last).Seconds()
    if elapsed > 0 {
        tb.tokens += elapsed * tb.rate
        if tb.tokens > tb.capacity {
            tb.tokens = tb.capacity
        }
        tb.last = now
    }
    if tb.tokens >= 1 {
        tb.tokens -= 1
        return true
    }
    return false
}

// TokenBucketProvider wraps a Provider and gates calls using a token bucket.
// Calls made while the bucket is empty fail fast as throttled.
type TokenBucketProvider struct {
    P  provider.Provider
    TB *TokenBucket
}

func (t *TokenBucketProvider) Name() string { return t.P.Name() }

func (t *TokenBucketProvider) Configured() bool { return t.P.Configured() }

func (t *TokenBucketProvider) Fetch(ctx context.Context) (provider.PricePair, error) {
    if t.TB != nil && !t.TB.Allow() {
        return provider.PricePair{}, provider.ThrottledError(t.P.Name(), errNoTokens)
    }
    return t.P.Fetch(ctx)
}

// Wrap applies the guard configured by rpm/burst or, when rpm is zero, by
// minInterval. With neither set p is returned unchanged.
func Wrap(p provider.Provider, rpm, burst int, minInterval time.Duration) provider.Provider {
    if rpm > 0 {
        return &TokenBucketProvider{P: p, TB: PerMinute(rpm, burst)}
    }
    if minInterval > 0 {
        return &MinInterval{P: p, Interval: minInterval}
    }
    return p
}
