package http

import (
	"encoding/json"
	"net/http"
	"time"
)

// Response represents an HTTP response with its body fully read
type Response struct {
	StatusCode int
	Status     string
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// GetBodyAsString returns the response body as a string
func (r *Response) GetBodyAsString() string {
	return string(r.Body)
}

// GetBodyAsJSON decodes the response body into v
func (r *Response) GetBodyAsJSON(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

// GetHeader returns the value of a header
func (r *Response) GetHeader(key string) string {
	return r.Headers.Get(key)
}

// IsSuccess returns true if the response status code is 2xx
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true for 4xx and 5xx status codes.
// Flows treat any such response as a failed call.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// IsClientError returns true if the response status code is 4xx
func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

// IsServerError returns true if the response status code is 5xx
func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}
