// Package oracle implements the typed HTTP client for the external crypto
// oracle. The oracle performs every cryptographic primitive (Argon2id hashing,
// AES encryption under a KDF-derived key, HMAC computation); this package only
// speaks its JSON contract and never implements a primitive itself.
//
// Every call is independent, synchronous and side-effect free. Calls are never
// retried: a failed call aborts the in-flight protocol run.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 5 * time.Second

// Client is the HTTP client for the crypto oracle.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the oracle client.
type Option func(*Client)

// WithTimeout sets the per-call timeout. A hung oracle must not block a
// request indefinitely.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithAPIKey sets the X-API-Key header sent on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// New creates an oracle client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("oracle base URL is required")
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) do(ctx context.Context, path string, body any, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{URL: c.baseURL + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return parseErrorResponse(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode oracle response: %w", err)
		}
	}

	return nil
}

func parseErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}

	oerr := &Error{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(body, &errResp); err == nil {
		switch {
		case errResp.Detail != "":
			oerr.Detail = errResp.Detail
		case errResp.Error != "":
			oerr.Detail = errResp.Error
		}
	}
	if oerr.Detail == "" {
		oerr.Detail = string(body)
	}
	return oerr
}
