package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request represents an HTTP request
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// NewRequest creates a new HTTP request. url may be absolute or a path
// relative to the client's base URL.
func NewRequest(method, url string) *Request {
	return &Request{
		Method:  method,
		URL:     url,
		Headers: make(map[string]string),
	}
}

// WithHeader adds a header to the request
func (r *Request) WithHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

// WithBody sets the raw body of the request
func (r *Request) WithBody(body []byte) *Request {
	r.Body = body
	return r
}

// WithJSONBody sets a JSON body and its content type
func (r *Request) WithJSONBody(body []byte) *Request {
	r.Body = body
	if _, ok := r.Headers["Content-Type"]; !ok {
		r.Headers["Content-Type"] = "application/json"
	}
	return r
}

// ResolveURL joins the request URL to baseURL unless it is already absolute.
func (r *Request) ResolveURL(baseURL string) (*url.URL, error) {
	target, err := url.Parse(r.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", r.URL, err)
	}
	if target.IsAbs() {
		return target, nil
	}
	if baseURL == "" {
		return nil, fmt.Errorf("relative url %q without a base url", r.URL)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}

	joined := *base
	joined.Path = strings.TrimRight(base.Path, "/") + "/" + strings.TrimLeft(target.Path, "/")
	joined.RawQuery = target.RawQuery
	return &joined, nil
}

// Build constructs an http.Request bound to ctx
func (r *Request) Build(ctx context.Context, baseURL string) (*http.Request, error) {
	reqURL, err := r.ResolveURL(baseURL)
	if err != nil {
		return nil, err
	}

	method := strings.ToUpper(r.Method)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, err
	}

	for key, value := range r.Headers {
		req.Header.Set(key, value)
	}
	if len(r.Body) > 0 && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}
