package httpclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrymomot/jokeviewer/pkg/logger"
)

const (
	defaultTimeout  = 10 * time.Second
	maxErrorBody    = 500
	maxResponseBody = 4 << 20
)

// RequestFunc builds a fresh request for every attempt.
type RequestFunc func(ctx context.Context) (*http.Request, error)

// Client performs requests with retries on transient failures.
//
// Network errors, 429 and 5xx responses are retried with exponential
// backoff (base delay doubled per attempt). Any other non-2xx status is
// returned immediately as a *StatusError.
type Client struct {
	http       *http.Client
	logger     *slog.Logger
	baseDelay  time.Duration
	maxRetries int
}

// Option configures a Client.
type Option func(*config)

type config struct {
	logger     *slog.Logger
	proxy      string
	timeout    time.Duration
	baseDelay  time.Duration
	maxRetries int
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithProxy routes requests through proxyURL.
// Without it HTTP_PROXY/HTTPS_PROXY from the environment apply.
func WithProxy(proxyURL string) Option {
	return func(c *config) {
		c.proxy = proxyURL
	}
}

// WithMaxRetries sets how many times a transient failure is retried.
func WithMaxRetries(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoff sets the delay before the first retry.
func WithBackoff(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.baseDelay = d
		}
	}
}

// WithLogger sets the logger used to report retries.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	cfg := &config{
		logger:     logger.NewNope(),
		timeout:    defaultTimeout,
		baseDelay:  time.Second,
		maxRetries: 2,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyFromEnvironment
	if cfg.proxy != "" {
		if parsed, err := url.Parse(cfg.proxy); err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.timeout,
		},
		logger:     cfg.logger,
		baseDelay:  cfg.baseDelay,
		maxRetries: cfg.maxRetries,
	}
}

// Do executes the request built by build and returns the response body of
// the first successful attempt.
func (c *Client) Do(ctx context.Context, build RequestFunc) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.baseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			c.logger.DebugContext(ctx, "retrying request",
				slog.Int("attempt", attempt+1),
				slog.Duration("wait", wait),
				slog.Any("error", lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		req, err := build(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading response: %w", err)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}

		lastErr = &StatusError{Code: resp.StatusCode, Body: truncate(string(body), maxErrorBody)}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			continue
		}
		return nil, lastErr
	}

	return nil, fmt.Errorf("exhausted %d retries: %w", c.maxRetries, lastErr)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Body string
	Code int
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
