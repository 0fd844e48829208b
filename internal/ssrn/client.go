// Package ssrn fetches SSRN abstract pages and extracts citation records from them.
package ssrn

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/time/rate"

	"github.com/blucap/ssrnbib/internal/retry"
)

const (
	// DefaultUserAgent is sent with every request; SSRN rejects Go's default agent.
	DefaultUserAgent = "Mozilla/5.0"

	// DefaultTimeout is the per-attempt HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the number of requests per second sent to SSRN.
	DefaultRateLimit = 1.0

	// DefaultMaxBodyBytes caps the size of a downloaded page.
	DefaultMaxBodyBytes = 5 * 1024 * 1024
)

// Fetcher retrieves the body of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Client is a rate-limited, retrying HTTP client for SSRN pages.
type Client struct {
	httpClient   *http.Client
	limiter      *rate.Limiter
	userAgent    string
	retrier      *retry.Retrier
	logger       *slog.Logger
	maxBodyBytes int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRetryPolicy replaces the default backoff policy.
func WithRetryPolicy(p retry.Policy) ClientOption {
	return func(c *Client) {
		c.retrier.Policy = p
	}
}

// WithSleeper replaces the clock used between attempts (for testing).
func WithSleeper(s retry.Sleeper) ClientOption {
	return func(c *Client) {
		c.retrier.Sleeper = s
	}
}

// WithRateLimit sets the maximum requests per second. Zero or less disables limiting.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithLogger sets the logger used for retry and fetch diagnostics.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a new SSRN client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		limiter:      rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		userAgent:    DefaultUserAgent,
		retrier:      retry.New(retry.DefaultPolicy()),
		logger:       slog.Default(),
		maxBodyBytes: DefaultMaxBodyBytes,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch downloads url, retrying failed attempts according to the client's
// backoff policy. The error of the final attempt is returned once the policy
// gives up.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	attempts := 0

	r := *c.retrier
	r.OnRetry = func(attempt int, delay time.Duration, err error) {
		c.logger.Warn("fetch failed, trying again",
			"url", url, "attempt", attempt, "delay", delay, "error", err)
	}

	err := r.Do(ctx, func(ctx context.Context) error {
		attempts++
		b, err := c.fetchOnce(ctx, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched page", "url", url, "bytes", len(body), "attempts", attempts)
	return body, nil
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, URL: url}
	}

	return c.readBody(resp)
}

// readBody decodes the response according to its Content-Encoding and
// enforces the size cap.
func (c *Client) readBody(resp *http.Response) ([]byte, error) {
	reader := io.Reader(resp.Body)

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip decode: %v", ErrNetworkError, err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	}

	body, err := io.ReadAll(io.LimitReader(reader, c.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}
	if int64(len(body)) > c.maxBodyBytes {
		return nil, fmt.Errorf("response body exceeds limit of %d bytes", c.maxBodyBytes)
	}
	return body, nil
}
