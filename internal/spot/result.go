package spot

import "time"

// CacheStatus is reported to HTTP callers in the X-Cache header.
type CacheStatus string

const (
    CacheHit   CacheStatus = "HIT"
    CacheStale CacheStatus = "STALE"
    CacheMiss  CacheStatus = "MISS"
)

// StaleMarker is appended to the source of a pair served from an expired cache.
const StaleMarker = "[STALE CACHE]"

// FallbackSource labels the hardcoded default pair.
const FallbackSource = "fallback"

// FallbackMessage accompanies the hardcoded default pair.
const FallbackMessage = "Using default prices - API temporarily unavailable"

// Result is what a resolution hands back to callers. Silver and Gold are
// always positive.
type Result struct {
    Silver       float64 `json:"silver"`
    Gold         float64 `json:"gold"`
    Source       string  `json:"source"`
    Cached       bool    `json:"cached"`
    Stale        bool    `json:"stale,omitempty"`
    CacheAge     *int64  `json:"cacheAge,omitempty"`     // seconds
    CacheExpires *int64  `json:"cacheExpires,omitempty"` // seconds of TTL left
    Error        string  `json:"error,omitempty"`
    Message      string  `json:"message,omitempty"`

    Status CacheStatus `json:"-"`
}

// IsFallback reports whether the hardcoded default pair was served.
func (r Result) IsFallback() bool { return r.Source == FallbackSource }

func seconds(d time.Duration) *int64 {
    if d < 0 { d = 0 }
    s := int64(d / time.Second)
    return &s
}
