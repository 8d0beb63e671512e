package ratelimit

import (
    "context"
    "fmt"
    "sync"
    "time"

    "silverspot/internal/provider"
)

// MinInterval wraps a provider and enforces a minimum time between calls.
// A call arriving before the interval has elapsed since the last one is
// refused with a throttled error instead of waiting, so the caller can move
// on to the next provider.
type MinInterval struct {
    P        provider.Provider
    Interval time.Duration

    mu   sync.Mutex
    last time.Time
    now  func() time.Time
}

func (m *MinInterval) Name() string { return m.P.Name() }

func (m *MinInterval) Configured() bool { return m.P.Configured() }

func (m *MinInterval) Fetch(ctx context.Context) (provider.PricePair, error) {
    if m.Interval > 0 {
        // reserve the slot before calling so concurrent callers see it
        m.mu.Lock()
        now := m.clock()
        if wait := m.last.Add(m.Interval).Sub(now); !m.last.IsZero() && wait > 0 {
            m.mu.Unlock()
            return provider.PricePair{}, provider.ThrottledError(m.P.Name(), fmt.Errorf("next call allowed in %s", wait.Round(time.Second)))
        }
        m.last = now
        m.mu.Unlock()
    }
    return m.P.Fetch(ctx)
}

func (m *MinInterval) clock() time.Time {
    if m.now != nil { return m.now() }
    return time.Now()
}
