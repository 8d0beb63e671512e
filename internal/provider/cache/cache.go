package cache

import (
    "sync/atomic"
    "time"

    "silverspot/internal/provider"
)

// Entry is one cached price pair. Entries are never mutated after Store
// builds them; a refresh replaces the whole entry.
type Entry struct {
    Prices   provider.PricePair
    CachedAt time.Time
}

// Age is the time elapsed since the entry was cached.
func (e *Entry) Age(now time.Time) time.Duration {
    if d := now.Sub(e.CachedAt); d > 0 { return d }
    return 0
}

// Fresh reports whether the entry is younger than ttl.
func (e *Entry) Fresh(now time.Time, ttl time.Duration) bool {
    return e.Age(now) < ttl
}

// Store holds the single process-wide price entry. The zero value is an
// empty store ready for use. Reads and writes go through one atomic pointer,
// so readers always observe a complete entry and the last writer wins.
type Store struct {
    entry atomic.Pointer[Entry]
}

func New() *Store { return &Store{} }

// Load returns the current entry or nil when nothing has been cached yet.
func (s *Store) Load() *Entry { return s.entry.Load() }

// Put replaces the cached entry with prices cached at the given time.
func (s *Store) Put(prices provider.PricePair, at time.Time) *Entry {
    e := &Entry{Prices: prices, CachedAt: at}
    s.entry.Store(e)
    return e
}
