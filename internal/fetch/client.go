// Package fetch provides the resilient HTTP GET client shared by every data
// source. Each client owns one circuit breaker, so a provider that has gone
// down stops a multi-request run early instead of timing out once per URL.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/anthony-illenden/METR-Compilation/internal/observability"
)

var (
	// ErrNotFound reports a 404 from the source, e.g. an archive miss for a
	// station/time with no sounding. Never retried.
	ErrNotFound = errors.New("not found")

	// ErrNoData reports a well-formed response carrying no usable rows.
	ErrNoData = errors.New("no data in response")

	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
)

// Config bundles timeout and retry settings for one client.
type Config struct {
	Timeout        time.Duration
	Retries        int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	UserAgent      string
}

// Client performs GET requests against one data source with retries,
// exponential backoff, and a circuit breaker.
type Client struct {
	source     string
	cfg        Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a client for the named data source. The source label is
// carried into logs and metrics.
func NewClient(source string, cfg Config, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		source: source,
		cfg:    cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    source,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
		logger:  logger,
		metrics: metrics,
	}
}

// Get fetches the URL and returns the response body. Connection errors, 429
// and 5xx responses are retried up to the configured limit; 404 maps to
// ErrNotFound without retry; other non-200 statuses fail immediately with the
// body in the error.
func (c *Client) Get(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		body, retryable, err := c.doOnce(ctx, fullURL)
		if err == nil {
			c.metrics.HTTPRequests.WithLabelValues(c.source, "success").Inc()
			return body, nil
		}
		if !retryable {
			c.metrics.HTTPRequests.WithLabelValues(c.source, "error").Inc()
			return nil, err
		}

		lastErr = err
		if attempt >= c.cfg.Retries {
			c.metrics.HTTPRequests.WithLabelValues(c.source, "error").Inc()
			return nil, lastErr
		}

		delay := c.cfg.InitialBackoff * time.Duration(math.Pow(2, float64(attempt)))
		if c.cfg.MaxBackoff > 0 && delay > c.cfg.MaxBackoff {
			delay = c.cfg.MaxBackoff
		}
		c.logger.Warn("retrying request",
			"source", c.source, "attempt", attempt+1, "delay", delay, "error", err)
		c.metrics.HTTPRetries.WithLabelValues(c.source).Inc()

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// GetInto fetches the URL and decodes the JSON body into v.
func (c *Client) GetInto(ctx context.Context, fullURL string, v any) error {
	body, err := c.Get(ctx, fullURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.source, err)
	}
	return nil
}

// doOnce executes a single attempt. The bool reports whether the failure is
// retryable.
func (c *Client) doOnce(ctx context.Context, fullURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, execErr := c.httpClient.Do(req)
		if execErr != nil {
			return nil, execErr
		}

		// 429 and 5xx count against the breaker; everything else is a
		// valid answer from a healthy source.
		if resp.StatusCode == http.StatusTooManyRequests {
			drain(resp)
			return nil, errRateLimited
		}
		if resp.StatusCode >= 500 {
			drain(resp)
			return nil, errServerError
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, false, fmt.Errorf("%s: circuit breaker open: %w", c.source, err)
		}
		return nil, true, fmt.Errorf("%s request: %w", c.source, err)
	}

	resp := result.(*http.Response)
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return nil, false, fmt.Errorf("%s: %w", c.source, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, false, fmt.Errorf("%s: status %d: %s", c.source, resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("%s: read response: %w", c.source, err)
	}
	return body, false, nil
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
