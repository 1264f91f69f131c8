// Package emailcheck wraps the Abstract email validation API. It does one
// thing: given an address, report whether the provider considers it
// deliverable. Keeping the HTTP details here makes the service easy to swap.
package emailcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultEndpoint is the production validation endpoint.
const DefaultEndpoint = "https://emailvalidation.abstractapi.com/v1/"

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("emailcheck: api key is not configured")

// BoolField decodes Abstract's {"value": true, "text": "TRUE"} objects.
type BoolField struct {
	Value bool   `json:"value"`
	Text  string `json:"text"`
}

// Result is the subset of the provider response the API exposes.
type Result struct {
	Email          string    `json:"email"`
	Deliverability string    `json:"deliverability"`
	QualityScore   string    `json:"quality_score"`
	IsValidFormat  BoolField `json:"is_valid_format"`
	IsSMTPValid    BoolField `json:"is_smtp_valid"`
}

// Client calls the validation endpoint. The zero value is not usable;
// construct with New.
type Client struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithEndpoint overrides the provider endpoint (used in tests).
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New constructs a Client. apiKey may be empty; Validate then fails with
// ErrNotConfigured so the misconfiguration surfaces at call time.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		endpoint: DefaultEndpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate asks the provider about one address.
func (c *Client) Validate(ctx context.Context, email string) (*Result, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("emailcheck: bad endpoint: %w", err)
	}
	q := u.Query()
	q.Set("api_key", c.apiKey)
	q.Set("email", email)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("emailcheck: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("emailcheck: call provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("emailcheck: provider returned status %d: %s",
			resp.StatusCode, string(body))
	}

	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("emailcheck: decode response: %w", err)
	}
	return &out, nil
}
