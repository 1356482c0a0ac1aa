// Package http is the network client used by flows. A call is made exactly
// once; failures are reported to the caller and never retried.
package http

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client represents an HTTP client with customizable options
type Client struct {
	httpClient *http.Client
	transport  *http.Transport
	baseURL    string
	headers    map[string]string
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client)

// NewClient creates a new HTTP client with the given options
func NewClient(options ...ClientOption) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 0
	transport.MaxIdleConnsPerHost = 100

	client := &Client{
		transport: transport,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		headers: make(map[string]string),
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// WithBaseURL sets the base URL that relative request URLs are joined to
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the per-call timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHeader adds a header sent with every request
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithHeaders adds several default headers
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithUserAgent sets the default User-Agent header
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.headers["User-Agent"] = ua
		}
	}
}

// WithMaxConnsPerHost sizes the connection pool. It is normally set to the
// concurrency limit so that every in-flight call can hold a connection.
func WithMaxConnsPerHost(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.transport.MaxConnsPerHost = n
			c.transport.MaxIdleConnsPerHost = n
		}
	}
}

// WithInsecureSkipVerify disables TLS certificate verification
func WithInsecureSkipVerify(skip bool) ClientOption {
	return func(c *Client) {
		if skip {
			c.transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		}
	}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes a request once and reads the whole body.
//
// An error is returned only when no response was received. Any status code,
// including 4xx and 5xx, comes back as a Response.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := req.Build(ctx, c.baseURL)
	if err != nil {
		return nil, err
	}

	for key, value := range c.headers {
		if httpReq.Header.Get(key) == "" {
			httpReq.Header.Set(key, value)
		}
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", httpReq.Method, httpReq.URL.Redacted(), err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", httpReq.Method, httpReq.URL.Redacted(), err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Headers:    httpResp.Header,
		Body:       body,
		Duration:   time.Since(start),
	}, nil
}

// CloseIdleConnections releases pooled connections.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}
