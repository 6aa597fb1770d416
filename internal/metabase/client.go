package metabase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/sozercan/card-inspector/internal/config"
)

const (
	cardPath     = "/api/card/"
	apiKeyHeader = "X-API-Key"
)

// RequestError is returned when the card could not be fetched, either because
// the transport failed or because Metabase answered with a non-2xx status.
type RequestError struct {
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("%s for url: %s", e.Status, e.URL)
}

func (e *RequestError) Unwrap() error { return e.Err }

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the HTTP client built from the configured timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(cfg config.MetabaseConfig, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid metabase base URL %q: %w", cfg.BaseURL, err)
	}
	slog.Debug("Creating Metabase client", "base_url", cfg.BaseURL)

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CardURL returns the endpoint for a card with cached view results disabled.
func (c *Client) CardURL(cardID string) string {
	return c.baseURL + cardPath + url.PathEscape(cardID) + "?ignore_view=true"
}

// FetchCard performs a single GET for the card and returns the raw body.
func (c *Client) FetchCard(ctx context.Context, cardID string) ([]byte, error) {
	u := c.CardURL(cardID)
	slog.Info("Fetching card", "card_id", cardID, "url", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &RequestError{URL: u, Err: err}
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Card request failed", "card_id", cardID, "error", err)
		return nil, &RequestError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		slog.Warn("Metabase returned non-success status", "card_id", cardID, "status", resp.StatusCode)
		return nil, &RequestError{URL: u, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{URL: u, StatusCode: resp.StatusCode, Status: resp.Status, Err: err}
	}
	slog.Debug("Card fetched", "card_id", cardID, "bytes", len(body))
	return body, nil
}
