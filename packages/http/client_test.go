package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, client *Client, spec *RequestSpec) *Response {
	t.Helper()
	resp, err := client.Call(context.Background(), spec, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Close() })
	return resp
}

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/test", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message": "hello"}`))
	}))
	defer server.Close()

	client := NewClient()
	resp := call(t, client, NewRequestSpec(MethodGet, server.URL+"/test"))

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header("Content-Type"))
	body, err := resp.ReadAll()
	require.NoError(t, err)
	assert.Contains(t, string(body), "hello")
}

func TestClient_Post(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"name": "test"}`, string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 123}`))
	}))
	defer server.Close()

	client := NewClient()
	spec := NewRequestSpec(MethodPost, server.URL).
		AddHeader("Content-Type", "application/json").
		SetBody(`{"name": "test"}`)
	resp := call(t, client, spec)

	assert.Equal(t, 201, resp.StatusCode)
	body, err := resp.ReadAll()
	require.NoError(t, err)
	assert.Contains(t, string(body), "123")
}

func TestClient_WithTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(WithTimeout(50 * time.Millisecond))
	_, err := client.Call(context.Background(), NewRequestSpec(MethodGet, server.URL), nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Client.Timeout exceeded")
}

func TestClient_WithDefaultHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(WithDefaultHeader("Authorization", "test-token"))
	resp := call(t, client, NewRequestSpec(MethodGet, server.URL))

	assert.Equal(t, 200, resp.StatusCode)
}

func TestClient_WithDefaultHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "custom-agent", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(WithDefaultHeaders(map[string]string{
		"Authorization": "test-token",
		"User-Agent":    "custom-agent",
	}))
	resp := call(t, client, NewRequestSpec(MethodGet, server.URL))

	assert.Equal(t, 200, resp.StatusCode)
}

func TestClient_RequestHeaderWinsOverDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "from-request", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(WithDefaultHeader("Authorization", "from-default"))
	spec := NewRequestSpec(MethodGet, server.URL).AddHeader("Authorization", "from-request")
	resp := call(t, client, spec)

	assert.Equal(t, 200, resp.StatusCode)
}

func TestClient_FollowRedirects(t *testing.T) {
	redirectCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/final" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`final`))
			return
		}
		redirectCount++
		http.Redirect(w, r, "/final", http.StatusFound)
	}))
	defer server.Close()

	client := NewClient(WithFollowRedirects(true))
	resp := call(t, client, NewRequestSpec(MethodGet, server.URL+"/redirect"))

	assert.Equal(t, 200, resp.StatusCode)
	body, err := resp.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "final", string(body))
	assert.Equal(t, 1, redirectCount)
}

func TestClient_NoFollowRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	}))
	defer server.Close()

	client := NewClient(WithFollowRedirects(false))
	resp := call(t, client, NewRequestSpec(MethodGet, server.URL+"/redirect"))

	assert.Equal(t, 302, resp.StatusCode)
}

func TestClient_MaxRedirects(t *testing.T) {
	redirectCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		redirectCount++
		// Infinite redirect loop
		http.Redirect(w, r, "/redirect", http.StatusFound)
	}))
	defer server.Close()

	client := NewClient(WithMaxRedirects(3))
	resp := call(t, client, NewRequestSpec(MethodGet, server.URL+"/redirect"))

	// Should stop after max redirects and return the redirect response
	assert.Equal(t, 302, resp.StatusCode)
	assert.LessOrEqual(t, redirectCount, 4)
}

func TestClient_CallMalformedURL(t *testing.T) {
	client := NewClient()
	_, err := client.Call(context.Background(), NewRequestSpec(MethodGet, "http://exa mple.com"), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedURL)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid http URL",
			url:     "http://example.com/path",
			wantErr: false,
		},
		{
			name:    "valid https URL",
			url:     "https://example.com/path",
			wantErr: false,
		},
		{
			name:    "invalid scheme",
			url:     "ftp://example.com",
			wantErr: true,
			errMsg:  "unsupported URL scheme",
		},
		{
			name:    "missing scheme",
			url:     "example.com/path",
			wantErr: true,
			errMsg:  "unsupported URL scheme",
		},
		{
			name:    "file scheme",
			url:     "file:///etc/passwd",
			wantErr: true,
			errMsg:  "unsupported URL scheme",
		},
		{
			name:    "missing host",
			url:     "http:///path",
			wantErr: true,
			errMsg:  "URL must have a host",
		},
		{
			name:    "whitespace",
			url:     "http://example.com/a b",
			wantErr: true,
			errMsg:  "malformed url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResponse_StatusClass(t *testing.T) {
	tests := []struct {
		statusCode  int
		success     bool
		redirect    bool
		clientError bool
		serverError bool
	}{
		{101, false, false, false, false},
		{200, true, false, false, false},
		{204, true, false, false, false},
		{299, true, false, false, false},
		{301, false, true, false, false},
		{399, false, true, false, false},
		{400, false, false, true, false},
		{404, false, false, true, false},
		{500, false, false, false, true},
		{503, false, false, false, true},
	}

	for _, tt := range tests {
		resp := &Response{StatusCode: tt.statusCode}
		assert.Equal(t, tt.success, resp.IsSuccess(), "StatusCode: %d", tt.statusCode)
		assert.Equal(t, tt.redirect, resp.IsRedirect(), "StatusCode: %d", tt.statusCode)
		assert.Equal(t, tt.clientError, resp.IsClientError(), "StatusCode: %d", tt.statusCode)
		assert.Equal(t, tt.serverError, resp.IsServerError(), "StatusCode: %d", tt.statusCode)
	}
}

func TestResponse_IsJSON(t *testing.T) {
	tests := []struct {
		contentType string
		expected    bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"application/problem+json", true},
		{"text/html", false},
		{"text/plain", false},
		{"", false},
	}

	for _, tt := range tests {
		resp := &Response{Headers: http.Header{"Content-Type": []string{tt.contentType}}}
		assert.Equal(t, tt.expected, resp.IsJSON(), "Content-Type: %s", tt.contentType)
	}
}

func TestResponse_StatusLine(t *testing.T) {
	resp := &Response{StatusCode: 404, Status: "404 Not Found", Proto: "HTTP/1.1"}
	assert.Equal(t, "HTTP/1.1 404 Not Found", resp.StatusLine())

	resp = &Response{StatusCode: 200}
	assert.Equal(t, "OK", resp.StatusLine())
}
