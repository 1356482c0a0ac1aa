package http

import (
	"context"
	"io"
	"testing"
)

func TestRequest_Build(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		url         string
		baseURL     string
		expectedURL string
		wantErr     bool
	}{
		{
			name:        "relative path",
			method:      "GET",
			url:         "/users",
			baseURL:     "https://api.example.com",
			expectedURL: "https://api.example.com/users",
		},
		{
			name:        "trailing slash in base URL",
			method:      "GET",
			url:         "/users",
			baseURL:     "https://api.example.com/",
			expectedURL: "https://api.example.com/users",
		},
		{
			name:        "base URL with path",
			method:      "GET",
			url:         "me",
			baseURL:     "https://api.example.com/v1",
			expectedURL: "https://api.example.com/v1/me",
		},
		{
			name:        "query string kept",
			method:      "GET",
			url:         "/users?page=2",
			baseURL:     "https://api.example.com",
			expectedURL: "https://api.example.com/users?page=2",
		},
		{
			name:        "absolute URL ignores base",
			method:      "GET",
			url:         "http://localhost:8000/auth",
			baseURL:     "https://api.example.com",
			expectedURL: "http://localhost:8000/auth",
		},
		{
			name:    "relative URL without base",
			method:  "GET",
			url:     "/users",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequest(tt.method, tt.url).Build(context.Background(), tt.baseURL)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Build() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if req.URL.String() != tt.expectedURL {
				t.Errorf("Expected URL %s, got %s", tt.expectedURL, req.URL.String())
			}
			if req.Method != tt.method {
				t.Errorf("Expected method %s, got %s", tt.method, req.Method)
			}
		})
	}
}

func TestRequest_BuildBodyAndHeaders(t *testing.T) {
	req, err := NewRequest("post", "http://localhost/users").
		WithHeader("Authorization", "Bearer x").
		WithBody([]byte(`{"a":1}`)).
		Build(context.Background(), "")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if req.Method != "POST" {
		t.Errorf("Expected method POST, got %s", req.Method)
	}
	if req.Header.Get("Authorization") != "Bearer x" {
		t.Errorf("Expected Authorization header, got %q", req.Header.Get("Authorization"))
	}
	if req.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Expected JSON content type, got %q", req.Header.Get("Content-Type"))
	}
	body, _ := io.ReadAll(req.Body)
	if string(body) != `{"a":1}` {
		t.Errorf("Expected body {\"a\":1}, got %s", body)
	}
}

func TestRequest_WithJSONBodyKeepsExplicitContentType(t *testing.T) {
	req := NewRequest("POST", "/x").
		WithHeader("Content-Type", "application/vnd.api+json").
		WithJSONBody([]byte(`{}`))

	if req.Headers["Content-Type"] != "application/vnd.api+json" {
		t.Errorf("Expected explicit content type to be kept, got %s", req.Headers["Content-Type"])
	}
}
