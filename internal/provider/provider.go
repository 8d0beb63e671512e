package provider

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "math"
    "strconv"
    "strings"
    "time"
)

// PricePair is the normalized shape returned by all providers.
// Prices are USD per troy ounce and are always positive once constructed
// through NewPricePair.
type PricePair struct {
    Silver    float64   `json:"silver"`
    Gold      float64   `json:"gold"`
    Source    string    `json:"source"`
    FetchedAt time.Time `json:"fetched_at"`
}

// Provider fetches one silver/gold spot pair from an upstream.
//
//go:generate mockgen -package=spot_test -destination=../spot/mock_provider_test.go -source=provider.go Provider
type Provider interface {
    Name() string
    // Configured reports whether the provider has what it needs to be called
    // (for example an API key). Unconfigured providers are skipped silently.
    Configured() bool
    Fetch(ctx context.Context) (PricePair, error)
}

// NewPricePair validates both metals and stamps the pair.
func NewPricePair(source string, silver, gold float64, at time.Time) (PricePair, error) {
    if !validAmount(silver) || !validAmount(gold) {
        return PricePair{}, &FetchError{
            Provider: source,
            Kind:     KindInvalidValue,
            Err:      fmt.Errorf("silver=%v gold=%v", silver, gold),
        }
    }
    return PricePair{Silver: silver, Gold: gold, Source: source, FetchedAt: at.UTC()}, nil
}

func validAmount(v float64) bool {
    return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// ErrMissingAmount is returned by ParseAmount when the field is absent or null.
var ErrMissingAmount = errors.New("missing value")

// ParseAmount coerces a decoded JSON value into a positive finite float.
// Upstreams send numbers, json.Number or numeric strings ("31.5").
func ParseAmount(v any) (float64, error) {
    var f float64
    switch x := v.(type) {
    case nil:
        return 0, ErrMissingAmount
    case float64:
        f = x
    case json.Number:
        p, err := x.Float64()
        if err != nil { return 0, fmt.Errorf("not a number: %q", x.String()) }
        f = p
    case string:
        s := strings.TrimSpace(x)
        if s == "" { return 0, ErrMissingAmount }
        p, err := strconv.ParseFloat(s, 64)
        if err != nil { return 0, fmt.Errorf("not a number: %q", x) }
        f = p
    default:
        return 0, fmt.Errorf("unexpected type: %T", v)
    }
    if !validAmount(f) {
        return 0, fmt.Errorf("not a positive finite number: %v", f)
    }
    return f, nil
}
