// Package httpclient talks to a running defecthunt event server
// (see notify.Server) over HTTP.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"digital.vasic.defecthunt/pkg/notify"
)

// ClientOption configures an APIClient via functional options.
type ClientOption func(*APIClient)

// APIClient wraps net/http.Client for the event server's JSON
// endpoints.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// StatusError is returned when the server answers with a non-200
// status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned HTTP %d: %s", e.Code, e.Body)
}

// NewAPIClient creates a client targeting the given base URL.
func NewAPIClient(baseURL string, opts ...ClientOption) *APIClient {
	c := &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// WithTimeout overrides the default HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *APIClient) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *APIClient) { c.httpClient = hc }
}

// Events returns the events recorded by the server, only those of
// learnerID when it is not empty.
func (c *APIClient) Events(
	ctx context.Context, learnerID string,
) ([]notify.Event, error) {
	path := "/events"
	if learnerID != "" {
		path += "?learner=" + url.QueryEscape(learnerID)
	}
	var events []notify.Event
	if err := c.getJSON(ctx, path, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Stats returns the server's event counters.
func (c *APIClient) Stats(ctx context.Context) (notify.HubStats, error) {
	var stats notify.HubStats
	err := c.getJSON(ctx, "/stats", &stats)
	return stats, err
}

// Health checks the liveness endpoint.
func (c *APIClient) Health(ctx context.Context) error {
	_, err := c.get(ctx, "/health")
	return err
}

// BaseURL returns the configured base URL.
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

func (c *APIClient) getJSON(
	ctx context.Context, path string, out any,
) error {
	data, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (c *APIClient) get(
	ctx context.Context, path string,
) ([]byte, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+path, nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(data)),
		}
	}
	return data, nil
}
