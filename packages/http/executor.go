package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Doer sends a single request. *net/http.Client and *Client satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ProgressSink receives progress lines, one call per line.
type ProgressSink interface {
	WriteLine(line string)
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(line string)

func (f SinkFunc) WriteLine(line string) {
	f(line)
}

// DiscardSink drops every line.
var DiscardSink ProgressSink = SinkFunc(func(string) {})

// WriterSink writes each line followed by a newline to an io.Writer.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) WriteLine(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintln(s.w, line)
}

// Execute sends req through client and returns the response without reading or
// closing its body. It writes one line before sending and one after the status line
// arrives. Non-2xx statuses are not errors. Errors from client are returned unchanged.
func Execute(ctx context.Context, client Doer, req *ConcreteRequest, sink ProgressSink) (*Response, error) {
	if sink == nil {
		sink = DiscardSink
	}

	httpReq, err := req.NewHTTPRequest(ctx)
	if err != nil {
		return nil, err
	}

	sink.WriteLine("Sending request to url: " + req.URI)

	start := time.Now()
	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}

	resp := newResponse(httpResp, time.Since(start))
	sink.WriteLine("Response Code: " + resp.StatusLine())

	return resp, nil
}
