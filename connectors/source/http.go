package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single dataset fetch.
const DefaultTimeout = 60 * time.Second

// maxErrorBody caps how much of an error response ends up in the error text.
const maxErrorBody = 512

// HTTPClient fetches dataset files with unauthenticated GET requests.
type HTTPClient struct {
	client *http.Client
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.client = c }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) {
		if d > 0 {
			h.client.Timeout = d
		}
	}
}

// NewHTTPClient returns a client using DefaultTimeout unless overridden.
func NewHTTPClient(opts ...Option) *HTTPClient {
	h := &HTTPClient{client: &http.Client{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Fetch streams the response body of a GET on url into w. Any status other
// than 200 is an error.
func (h *HTTPClient) Fetch(ctx context.Context, url string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return 0, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read response: %w", err)
	}
	return n, nil
}
