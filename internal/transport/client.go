// Package transport implements the HTTP transport contract from
// pkg/zabuza on top of hashicorp/go-retryablehttp.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/okoye/zabuza/pkg/zabuza"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "zabuza-go"
)

// Client is the default zabuza.Transport. Retries are disabled unless
// explicitly configured; the core protocol is fail-fast.
type Client struct {
	httpClient *retryablehttp.Client
	userAgent  string
	logger     zabuza.Logger
	debug      bool
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the structured logger.
func WithLogger(logger zabuza.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout bounds each HTTP exchange.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithRetryConfig enables retries for transient failures.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// NewClient creates a transport client.
func NewClient(opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = defaultTimeout

	client := &Client{
		httpClient: retryClient,
		userAgent:  defaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do sends the request and returns the response for any completed exchange,
// regardless of status code. Only failures to complete the exchange are
// errors.
func (c *Client) Do(ctx context.Context, req *zabuza.Request) (*zabuza.Response, error) {
	fullURL, err := buildURL(req.URL, req.Query)
	if err != nil {
		return nil, fmt.Errorf("building request URL: %w", err)
	}

	var bodyReader io.Reader

	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending %s %s: %w", req.Method, fullURL, err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
			"status": httpResp.StatusCode,
		})
	}

	return &zabuza.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}, nil
}

// buildURL appends query parameters to an absolute URL.
func buildURL(rawURL string, query url.Values) (string, error) {
	if len(query) == 0 {
		return rawURL, nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}

	merged := parsed.Query()
	for key, values := range query {
		for _, value := range values {
			merged.Add(key, value)
		}
	}

	parsed.RawQuery = merged.Encode()

	return parsed.String(), nil
}

var _ zabuza.Transport = (*Client)(nil)
