package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultRetryWaitMin = 500 * time.Millisecond
	defaultRetryWaitMax = 5 * time.Second
)

type Options struct {
	Timeout   time.Duration
	UserAgent string
	RetryMax  int
}

// Client is a retrying HTTP client that sets a user agent on every request.
type Client struct {
	inner     *retryablehttp.Client
	userAgent string
}

func NewClient(opts Options, log *slog.Logger) *Client {
	r := retryablehttp.NewClient()
	r.RetryMax = max(opts.RetryMax, 0)
	r.RetryWaitMin = defaultRetryWaitMin
	r.RetryWaitMax = defaultRetryWaitMax
	r.HTTPClient.Timeout = opts.Timeout
	r.Logger = log

	return &Client{
		inner:     r,
		userAgent: opts.UserAgent,
	}
}

// Get issues a GET request. The caller owns the response body.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.inner.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	return resp, nil
}

// StandardClient exposes the retrying transport as a plain *http.Client for
// libraries that accept one.
func (c *Client) StandardClient() *http.Client {
	return c.inner.StandardClient()
}
