package provider

import (
    "context"
    "errors"
    "fmt"
    "net"
)

// Kind classifies why a provider attempt failed. Every kind is handled the
// same way by the resolver; the distinction exists for logs and metrics.
type Kind string

const (
    KindNetwork      Kind = "network"
    KindHTTPStatus   Kind = "http_status"
    KindMalformed    Kind = "malformed"
    KindInvalidValue Kind = "invalid_value"
    KindThrottled    Kind = "throttled"
)

// FetchError is the error type returned by providers.
type FetchError struct {
    Provider string
    Kind     Kind
    Status   int // set for KindHTTPStatus
    Err      error
}

func (e *FetchError) Error() string {
    switch e.Kind {
    case KindHTTPStatus:
        if e.Err != nil {
            return fmt.Sprintf("%s responded with status %d: %v", e.Provider, e.Status, e.Err)
        }
        return fmt.Sprintf("%s responded with status %d", e.Provider, e.Status)
    case KindInvalidValue:
        return fmt.Sprintf("%s returned invalid prices: %v", e.Provider, e.Err)
    case KindMalformed:
        return fmt.Sprintf("%s returned a malformed payload: %v", e.Provider, e.Err)
    case KindThrottled:
        return fmt.Sprintf("%s request budget exhausted: %v", e.Provider, e.Err)
    default:
        return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
    }
}

func (e *FetchError) Unwrap() error { return e.Err }

// KindOf returns the failure kind of err, defaulting to KindNetwork for
// errors that were not produced by a provider.
func KindOf(err error) Kind {
    var fe *FetchError
    if errors.As(err, &fe) {
        return fe.Kind
    }
    return KindNetwork
}

// NetworkError wraps a transport level failure (dial, TLS, timeout).
func NetworkError(name string, err error) error {
    return &FetchError{Provider: name, Kind: KindNetwork, Err: err}
}

// StatusError reports a non-2xx upstream response. snippet is an optional
// prefix of the response body.
func StatusError(name string, status int, snippet string) error {
    fe := &FetchError{Provider: name, Kind: KindHTTPStatus, Status: status}
    if snippet != "" {
        fe.Err = errors.New(snippet)
    }
    return fe
}

// MalformedError reports a payload that could not be mapped to a price pair.
func MalformedError(name string, err error) error {
    return &FetchError{Provider: name, Kind: KindMalformed, Err: err}
}

// InvalidValueError reports a metal value that is present but unusable.
func InvalidValueError(name string, err error) error {
    return &FetchError{Provider: name, Kind: KindInvalidValue, Err: err}
}

// ThrottledError reports a locally enforced request budget refusal.
func ThrottledError(name string, err error) error {
    return &FetchError{Provider: name, Kind: KindThrottled, Err: err}
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
    if errors.Is(err, context.DeadlineExceeded) {
        return true
    }
    var ne net.Error
    return errors.As(err, &ne) && ne.Timeout()
}

// AmountError classifies a ParseAmount failure for the named metal: an absent
// field is a malformed payload, anything else an invalid value.
func AmountError(name, metal string, err error) error {
    if errors.Is(err, ErrMissingAmount) {
        return MalformedError(name, fmt.Errorf("%s: %w", metal, err))
    }
    return InvalidValueError(name, fmt.Errorf("%s: %w", metal, err))
}
