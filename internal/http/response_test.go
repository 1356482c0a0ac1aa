package http

import (
	"net/http"
	"testing"
)

func TestResponse_GetBodyAsJSON(t *testing.T) {
	resp := &Response{Body: []byte(`{"token":"abc"}`)}

	var out struct {
		Token string `json:"token"`
	}
	if err := resp.GetBodyAsJSON(&out); err != nil {
		t.Fatalf("GetBodyAsJSON() error = %v", err)
	}
	if out.Token != "abc" {
		t.Errorf("Expected token abc, got %s", out.Token)
	}

	if err := (&Response{Body: []byte("not json")}).GetBodyAsJSON(&out); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestResponse_GetHeader(t *testing.T) {
	resp := &Response{Headers: http.Header{}}
	resp.Headers.Set("Content-Type", "application/json")

	if resp.GetHeader("content-type") != "application/json" {
		t.Errorf("Expected case-insensitive header lookup, got %q", resp.GetHeader("content-type"))
	}
}

func TestResponse_StatusMethods(t *testing.T) {
	tests := []struct {
		status      int
		success     bool
		isError     bool
		clientError bool
		serverError bool
	}{
		{200, true, false, false, false},
		{201, true, false, false, false},
		{302, false, false, false, false},
		{399, false, false, false, false},
		{400, false, true, true, false},
		{404, false, true, true, false},
		{500, false, true, false, true},
		{503, false, true, false, true},
	}

	for _, tt := range tests {
		resp := &Response{StatusCode: tt.status}
		if resp.IsSuccess() != tt.success {
			t.Errorf("%d: IsSuccess() = %v, want %v", tt.status, resp.IsSuccess(), tt.success)
		}
		if resp.IsError() != tt.isError {
			t.Errorf("%d: IsError() = %v, want %v", tt.status, resp.IsError(), tt.isError)
		}
		if resp.IsClientError() != tt.clientError {
			t.Errorf("%d: IsClientError() = %v, want %v", tt.status, resp.IsClientError(), tt.clientError)
		}
		if resp.IsServerError() != tt.serverError {
			t.Errorf("%d: IsServerError() = %v, want %v", tt.status, resp.IsServerError(), tt.serverError)
		}
	}
}
