package metalsdev

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"
	"time"

	"silverspot/internal/provider"
)

// Latest is the silver/gold subset of a /v1/latest response.
type Latest struct {
	Silver    float64
	Gold      float64
	Currency  string
	Unit      string
	Timestamp *time.Time
}

// GetLatest retrieves the latest spot prices for currency and unit
// (for example "USD" and "toz").
func (c *APIClient) GetLatest(ctx context.Context, currency, unit string, opts ...APIClientOption) (*Latest, error) {
	var override = &APIClient{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		header:     c.header.Clone(),
		query:      c.query,
	}
	for _, opt := range opts {
		opt(override)
	}

	query := maps.Clone(override.query)
	query.Set("currency", currency)
	query.Set("unit", unit)

	url := fmt.Sprintf("%s/v1/latest?%s", override.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, provider.NetworkError(Name, fmt.Errorf("creating request: %w", err))
	}
	req.Header = override.header
	req.Header.Set("Accept", "application/json")

	res, err := override.httpClient.Do(req)
	if err != nil {
		return nil, provider.NetworkError(Name, fmt.Errorf("performing request: %w", err))
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, provider.StatusError(Name, res.StatusCode, apiErrorMessage(b))
	}

	var body map[string]any
	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, provider.MalformedError(Name, fmt.Errorf("decoding latest response: %w", err))
	}

	// {
	//   "status": "success",
	//   "currency": "USD",
	//   "unit": "toz",
	//   "metals": { "gold": 2750.12, "silver": 31.51, ... },
	//   "timestamps": { "metal": "2024-10-18T15:04:05.123Z" }
	// }
	if status, _ := body["status"].(string); strings.EqualFold(status, "failure") {
		msg, _ := body["error_message"].(string)
		return nil, provider.MalformedError(Name, fmt.Errorf("api failure: %s", msg))
	}

	metals, _ := body["metals"].(map[string]any)
	silver, err := provider.ParseAmount(lookupMetal(metals, body, "silver"))
	if err != nil {
		return nil, provider.AmountError(Name, "silver", err)
	}
	gold, err := provider.ParseAmount(lookupMetal(metals, body, "gold"))
	if err != nil {
		return nil, provider.AmountError(Name, "gold", err)
	}

	latest := &Latest{Silver: silver, Gold: gold}
	latest.Currency, _ = body["currency"].(string)
	latest.Unit, _ = body["unit"].(string)
	if ts, ok := body["timestamps"].(map[string]any); ok {
		if s, ok := ts["metal"].(string); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				latest.Timestamp = &t
			}
		}
	}
	return latest, nil
}

// lookupMetal reads metal from the nested "metals" object, falling back to a
// top-level field of the same name.
func lookupMetal(metals, body map[string]any, metal string) any {
	if v, ok := metals[metal]; ok && v != nil {
		return v
	}
	return body[metal]
}

// apiErrorMessage extracts error_message from an error body when present.
func apiErrorMessage(b []byte) string {
	var e struct {
		ErrorMessage string `json:"error_message"`
	}
	if err := json.Unmarshal(b, &e); err == nil && e.ErrorMessage != "" {
		return e.ErrorMessage
	}
	return strings.TrimSpace(string(b))
}

// ErrNoKey is returned by Provider.Fetch when no API key is configured.
var ErrNoKey = errors.New("metals.dev: no api key configured")
