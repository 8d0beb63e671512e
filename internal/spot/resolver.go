package spot

import (
    "context"
    "errors"
    "log/slog"
    "time"

    "golang.org/x/sync/singleflight"

    "silverspot/internal/metrics"
    "silverspot/internal/provider"
    "silverspot/internal/provider/cache"
)

const (
    DefaultTTL             = time.Hour
    DefaultProviderTimeout = 8 * time.Second

    DefaultFallbackSilver = 31.5
    DefaultFallbackGold   = 2750.0
)

// errNoProviders is reported when every provider was skipped.
var errNoProviders = errors.New("no price providers available")

// Resolver returns the current silver/gold spot pair. It serves a fresh cache
// entry when it has one, otherwise walks the providers in priority order and
// degrades to the stale entry or the hardcoded fallback. Resolve never fails.
type Resolver struct {
    providers []provider.Provider
    cache     *cache.Store

    ttl      time.Duration
    timeout  time.Duration
    fallback provider.PricePair

    log     *slog.Logger
    metrics *metrics.Metrics
    now     func() time.Time

    sf singleflight.Group
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTTL sets how long a fetched pair is served without refetching.
func WithTTL(d time.Duration) Option {
    return func(r *Resolver) { if d > 0 { r.ttl = d } }
}

// WithProviderTimeout bounds each individual provider call.
func WithProviderTimeout(d time.Duration) Option {
    return func(r *Resolver) { if d > 0 { r.timeout = d } }
}

// WithFallback overrides the hardcoded default pair. Non-positive values are
// ignored.
func WithFallback(silver, gold float64) Option {
    return func(r *Resolver) {
        if p, err := provider.NewPricePair(FallbackSource, silver, gold, time.Time{}); err == nil {
            r.fallback = p
        }
    }
}

func WithLogger(l *slog.Logger) Option {
    return func(r *Resolver) { if l != nil { r.log = l } }
}

func WithMetrics(m *metrics.Metrics) Option {
    return func(r *Resolver) { r.metrics = m }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
    return func(r *Resolver) { if now != nil { r.now = now } }
}

// New builds a resolver over providers, tried in the given order. A nil store
// gets a fresh empty one.
func New(providers []provider.Provider, store *cache.Store, opts ...Option) *Resolver {
    if store == nil { store = cache.New() }
    r := &Resolver{
        providers: providers,
        cache:     store,
        ttl:       DefaultTTL,
        timeout:   DefaultProviderTimeout,
        fallback:  provider.PricePair{Silver: DefaultFallbackSilver, Gold: DefaultFallbackGold, Source: FallbackSource},
        log:       slog.Default(),
        now:       time.Now,
    }
    for _, opt := range opts { opt(r) }
    return r
}

// TTL returns the freshness window.
func (r *Resolver) TTL() time.Duration { return r.ttl }

// Resolve returns the best available pair. force skips the freshness check.
// Cancellation of ctx is not honored: a resolution always runs to a terminal
// outcome, each provider call being bounded by its own timeout.
func (r *Resolver) Resolve(ctx context.Context, force bool) Result {
    if !force {
        now := r.now()
        if e := r.cache.Load(); e != nil && e.Fresh(now, r.ttl) {
            return r.hit(e, now)
        }
    }

    ctx = context.WithoutCancel(ctx)
    // Concurrent misses share one walk over the providers.
    v, _, shared := r.sf.Do("refresh", func() (any, error) {
        return r.refresh(ctx), nil
    })
    out := v.(refreshOutcome)
    if shared {
        r.log.Debug("joined in-flight price refresh")
    }

    if out.err == nil {
        r.metrics.Resolution(metrics.OutcomeMiss)
        r.metrics.CacheAge(0)
        return Result{
            Silver: out.pair.Silver,
            Gold:   out.pair.Gold,
            Source: out.pair.Source,
            Status: CacheMiss,
        }
    }

    now := r.now()
    if e := r.cache.Load(); e != nil {
        return r.stale(e, now, out.err)
    }
    return r.useFallback(out.err)
}

func (r *Resolver) hit(e *cache.Entry, now time.Time) Result {
    age := e.Age(now)
    r.metrics.Resolution(metrics.OutcomeHit)
    r.metrics.CacheAge(age)
    r.log.Debug("serving cached spot prices", "source", e.Prices.Source, "age", age.Round(time.Second))
    return Result{
        Silver:       e.Prices.Silver,
        Gold:         e.Prices.Gold,
        Source:       e.Prices.Source,
        Cached:       true,
        CacheAge:     seconds(age),
        CacheExpires: seconds(r.ttl - age),
        Status:       CacheHit,
    }
}

func (r *Resolver) stale(e *cache.Entry, now time.Time, cause error) Result {
    age := e.Age(now)
    r.metrics.Resolution(metrics.OutcomeStale)
    r.metrics.CacheAge(age)
    r.log.Warn("all price providers failed, serving stale cache",
        "source", e.Prices.Source, "age", age.Round(time.Second), "error", cause)
    return Result{
        Silver:   e.Prices.Silver,
        Gold:     e.Prices.Gold,
        Source:   e.Prices.Source + " " + StaleMarker,
        Cached:   true,
        Stale:    true,
        CacheAge: seconds(age),
        Error:    cause.Error(),
        Status:   CacheStale,
    }
}

func (r *Resolver) useFallback(cause error) Result {
    r.metrics.Resolution(metrics.OutcomeFallback)
    r.log.Error("all price providers failed and nothing cached, serving fallback prices",
        "silver", r.fallback.Silver, "gold", r.fallback.Gold, "error", cause)
    return Result{
        Silver:  r.fallback.Silver,
        Gold:    r.fallback.Gold,
        Source:  FallbackSource,
        Error:   cause.Error(),
        Message: FallbackMessage,
        Status:  CacheMiss,
    }
}

type refreshOutcome struct {
    pair provider.PricePair
    err  error // last provider error; nil on success
}

// refresh tries each configured provider in order and caches the first
// valid pair.
func (r *Resolver) refresh(ctx context.Context) refreshOutcome {
    lastErr := errNoProviders
    for _, p := range r.providers {
        name := p.Name()
        if !p.Configured() {
            r.metrics.ProviderAttempt(name, metrics.StatusSkipped, "", 0)
            continue
        }
        start := time.Now()
        pair, err := r.attempt(ctx, p)
        took := time.Since(start)
        if err != nil {
            kind := provider.KindOf(err)
            r.metrics.ProviderAttempt(name, metrics.StatusError, string(kind), took)
            r.log.Warn("price provider failed",
                "provider", name, "kind", kind, "timeout", provider.IsTimeout(err), "took", took, "error", err)
            lastErr = err
            continue
        }
        r.metrics.ProviderAttempt(name, metrics.StatusOK, "", took)
        r.metrics.SpotPrice(pair.Silver, pair.Gold)
        r.cache.Put(pair, r.now())
        r.log.Info("fetched spot prices", "provider", name, "silver", pair.Silver, "gold", pair.Gold, "took", took)
        return refreshOutcome{pair: pair}
    }
    return refreshOutcome{err: lastErr}
}

// attempt runs one provider call under the per-provider timeout. The call is
// abandoned when the timeout fires even if the provider ignores ctx.
func (r *Resolver) attempt(ctx context.Context, p provider.Provider) (provider.PricePair, error) {
    ctx, cancel := context.WithTimeout(ctx, r.timeout)
    defer cancel()

    type result struct {
        pair provider.PricePair
        err  error
    }
    ch := make(chan result, 1)
    go func() {
        pair, err := p.Fetch(ctx)
        ch <- result{pair, err}
    }()

    var res result
    select {
    case res = <-ch:
    case <-ctx.Done():
        return provider.PricePair{}, provider.NetworkError(p.Name(), ctx.Err())
    }
    if res.err != nil {
        return provider.PricePair{}, res.err
    }
    // Providers are expected to validate, but the contract is enforced here too.
    src := res.pair.Source
    if src == "" { src = p.Name() }
    return provider.NewPricePair(src, res.pair.Silver, res.pair.Gold, res.pair.FetchedAt)
}
