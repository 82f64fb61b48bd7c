package http

import (
	"io"
	"net/http"
	"strings"
	"time"
)

// Response wraps the transport response. The body is left open; whoever receives
// a Response must Close it.
type Response struct {
	StatusCode int
	Status     string
	Proto      string
	Headers    http.Header
	Body       io.ReadCloser
	Duration   time.Duration
}

func newResponse(resp *http.Response, duration time.Duration) *Response {
	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Proto:      resp.Proto,
		Headers:    resp.Header,
		Body:       resp.Body,
		Duration:   duration,
	}
}

// StatusLine returns the status line as received, e.g. "HTTP/1.1 200 OK".
func (r *Response) StatusLine() string {
	status := r.Status
	if status == "" {
		status = http.StatusText(r.StatusCode)
	}
	if r.Proto == "" {
		return status
	}
	return r.Proto + " " + status
}

// ReadAll drains the body. It does not close it.
func (r *Response) ReadAll() ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	return io.ReadAll(r.Body)
}

func (r *Response) Close() error {
	if r.Body == nil {
		return nil
	}
	return r.Body.Close()
}

func (r *Response) Header(key string) string {
	return r.Headers.Get(key)
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

func (r *Response) IsJSON() bool {
	ct := r.ContentType()
	return strings.Contains(ct, "application/json") || strings.HasSuffix(strings.SplitN(ct, ";", 2)[0], "+json")
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
