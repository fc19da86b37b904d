// Package quiver fetches and decodes alternative datasets from the Quiver
// Quantitative API.
package quiver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"quiverwsb/internal/util"
)

// DatasetWallStreetBets is the resource path for the daily WallStreetBets
// mention/sentiment dataset.
const DatasetWallStreetBets = "historical/wallstreetbets"

// ErrExhaustedRetries is returned when a fetch fails on every attempt.
var ErrExhaustedRetries = errors.New("exhausted fetch retries")

// Client issues authenticated requests against the Quiver API, pacing them
// through a rate gate and retrying transient failures.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	token       string
	gate        *util.RateGate
	maxAttempts int
	retryDelay  time.Duration
	log         *slog.Logger
}

// NewClient creates a Client for the given endpoint and bearer token. Every
// attempt, including retries, acquires the rate gate first.
func NewClient(baseURL, token string, gate *util.RateGate, maxAttempts int, retryDelay time.Duration) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     baseURL,
		token:       token,
		gate:        gate,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		log:         slog.Default().With("client", "quiver"),
	}
}

// Fetch GETs the given resource path and returns the raw response body.
// A 404 means the dataset has no data and yields an empty string with no
// error. All other failures are retried up to the attempt budget with a
// fixed delay; exhaustion returns an error wrapping ErrExhaustedRetries.
func (c *Client) Fetch(ctx context.Context, resourcePath string) (string, error) {
	url := c.baseURL + "/" + resourcePath

	var payload string
	err := util.Retry(ctx, c.maxAttempts, c.retryDelay, func() error {
		if err := c.gate.Wait(ctx); err != nil {
			return err
		}
		p, err := c.attempt(ctx, url)
		if err != nil {
			c.log.Warn("fetch attempt failed", "resource", resourcePath, "err", err)
			return err
		}
		payload = p
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w: %v", resourcePath, ErrExhaustedRetries, err)
	}
	return payload, nil
}

// attempt issues a single GET. A 401 triggers one transparent re-issue of
// the same request against the response's final (post-redirect) URI before
// the status is evaluated. The re-issue does not count against the retry
// budget.
func (c *Client) attempt(ctx context.Context, url string) (string, error) {
	resp, err := c.do(ctx, url)
	if err != nil {
		return "", err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		finalURL := resp.Request.URL.String()
		drain(resp)
		resp, err = c.do(ctx, finalURL)
		if err != nil {
			return "", err
		}
	}
	defer drain(resp)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// No data available for this dataset. Valid empty result.
		return "", nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("reading response body: %w", err)
		}
		return string(body), nil
	default:
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

func (c *Client) do(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	return c.httpClient.Do(req)
}

// drain consumes and closes a response body so the connection can be reused.
func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
