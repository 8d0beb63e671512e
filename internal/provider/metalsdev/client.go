package metalsdev

import (
	"net/http"
	"net/url"
	"strings"
)

// baseURL is the production metals.dev API root.
const baseURL = "https://api.metals.dev"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=metalsdev_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIClient is a client for the metals.dev API.
type APIClient struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient is the HTTP httpClient.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query contains additional query parameters to be sent with each request.
	query url.Values
}

// APIClientOption is a configuration option for the metals.dev API client.
type APIClientOption func(*APIClient)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) APIClientOption {
	return func(c *APIClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) APIClientOption {
	return func(c *APIClient) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) APIClientOption {
	return func(c *APIClient) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewAPIClient creates a new metals.dev API client. An empty key yields a
// client that reports HasKey() == false; callers are expected to skip it.
func NewAPIClient(key string, options ...APIClientOption) (*APIClient, error) {
	var apiClient = &APIClient{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
	}
	if key = strings.TrimSpace(key); key != "" {
		// metals.dev authenticates with a query parameter.
		// https://metals.dev/docs
		apiClient.query.Set("api_key", key)
	}
	for _, option := range options {
		option(apiClient)
	}
	return apiClient, nil
}

// HasKey reports whether an API key was supplied.
func (c *APIClient) HasKey() bool {
	return c.query.Get("api_key") != ""
}
