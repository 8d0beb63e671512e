package httpx

import (
    "context"
    "fmt"
    "io"
    "net"
    "net/http"
    "time"
)

// DefaultUserAgent identifies this service to upstream price APIs.
const DefaultUserAgent = "silverspot/1.0"

// Client is a small wrapper around http.Client with sane defaults.
// It satisfies the Do(*http.Request) shape expected by API clients.
type Client struct {
    HTTP      *http.Client
    UserAgent string
    Headers   map[string]string
}

// New builds a client whose overall timeout is timeout. Individual calls are
// additionally bounded by the request context.
func New(timeout time.Duration) *Client {
    transport := &http.Transport{
        Proxy: http.ProxyFromEnvironment,
        DialContext: (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
        MaxIdleConns:          20,
        MaxIdleConnsPerHost:   4,
        ForceAttemptHTTP2:     true,
        IdleConnTimeout:       90 * time.Second,
        TLSHandshakeTimeout:   3 * time.Second,
        ExpectContinueTimeout: 1 * time.Second,
        ResponseHeaderTimeout: 5 * time.Second,
    }
    return &Client{HTTP: &http.Client{Timeout: timeout, Transport: transport}, UserAgent: DefaultUserAgent}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
    if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
        req.Header.Set("User-Agent", c.UserAgent)
    }
    for k, v := range c.Headers {
        if req.Header.Get(k) == "" {
            req.Header.Set(k, v)
        }
    }
    return c.HTTP.Do(req)
}

// GetJSON issues a GET with Accept: application/json and returns the response
// when the status is 2xx. Non-2xx responses are drained and reported as
// *StatusError carrying a short body snippet.
func (c *Client) GetJSON(ctx context.Context, url string, header http.Header) (*http.Response, error) {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
    if err != nil { return nil, fmt.Errorf("creating request: %w", err) }
    for k, vs := range header {
        for _, v := range vs { req.Header.Add(k, v) }
    }
    req.Header.Set("Accept", "application/json")
    resp, err := c.Do(req)
    if err != nil { return nil, err }
    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        defer resp.Body.Close()
        b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
        return nil, &StatusError{Code: resp.StatusCode, Body: string(b)}
    }
    return resp, nil
}

// StatusError is returned by GetJSON for non-2xx responses.
type StatusError struct {
    Code int
    Body string
}

func (e *StatusError) Error() string {
    if e.Body == "" { return fmt.Sprintf("http %d", e.Code) }
    return fmt.Sprintf("http %d: %s", e.Code, e.Body)
}
