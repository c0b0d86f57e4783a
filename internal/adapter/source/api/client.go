// Package api is the JSON-over-HTTP transport shared by the collaborator
// clients.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/boxoffice/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "BoxOffice/1.4"
	maxBodyBytes   = 16 << 20
)

// ErrNotFound is returned for 404 responses.
var ErrNotFound = errors.New("not found")

// Client performs authenticated GETs against one service.
type Client struct {
	source     string
	baseURL    string
	apiKey     string
	session    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client. source names the collaborator in errors and logs.
func NewClient(source, baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		source:  source,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		session: uuid.NewString(),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger.With("source", source),
	}
}

// Source returns the collaborator name.
func (c *Client) Source() string { return c.source }

// BaseURL returns the service root.
func (c *Client) BaseURL() string { return c.baseURL }

// GetJSON fetches path and decodes the JSON body into out. Every failure is
// a *domain.FetchError for op.
func (c *Client) GetJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	body, _, err := c.Get(ctx, op, path, query, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error("JSON parse error", "op", op, "error", err, "bodyLen", len(body))
		return domain.NewFetchError(c.source, op, fmt.Errorf("failed to parse response: %w", err))
	}
	return nil
}

// Get fetches path and returns the raw body and its content type.
func (c *Client) Get(ctx context.Context, op, path string, query url.Values, accept string) ([]byte, string, error) {
	reqURL := c.baseURL + path
	if !strings.HasPrefix(path, "/") && strings.Contains(path, "://") {
		reqURL = path
	}
	if len(query) > 0 {
		reqURL = reqURL + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, "", domain.NewFetchError(c.source, op, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Session-Id", c.session)
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	c.logger.Debug("request", "op", op, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "op", op, "error", err)
		return nil, "", domain.NewFetchError(c.source, op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", domain.NewFetchError(c.source, op, fmt.Errorf("failed to read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, "", domain.NewFetchError(c.source, op, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		c.logger.Error("request error", "op", op, "status", resp.StatusCode, "body", truncate(body, 512))
		return nil, "", domain.NewFetchError(c.source, op, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	return body, resp.Header.Get("Content-Type"), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
