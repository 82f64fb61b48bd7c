package http

import (
	"bytes"
	"context"
	"net/http"
	"strings"
)

const (
	HeaderContentType = "Content-Type"
	// FormContentType is the content type of entities built from parameters.
	FormContentType = "application/x-www-form-urlencoded"
)

// Entity is a request payload and its content type. An empty ContentType leaves
// the choice to the transport.
type Entity struct {
	Content     []byte
	ContentType string
}

// ConcreteRequest is a fully resolved request ready to be executed.
// Entity is nil for requests that carry no body.
type ConcreteRequest struct {
	Method  Method
	URI     string
	Headers []NameValuePair
	Entity  *Entity
}

// HasEntity reports whether the request carries a body.
func (r *ConcreteRequest) HasEntity() bool {
	return r.Entity != nil
}

// Header returns the first value of the named header.
func (r *ConcreteRequest) Header(name string) string {
	v, _ := HeaderValue(r.Headers, name)
	return v
}

// NewHTTPRequest converts r into a *net/http.Request bound to ctx. Headers are added in
// order, so repeated names keep every value. The entity's content type is only used when
// no Content-Type header was supplied.
func (r *ConcreteRequest) NewHTTPRequest(ctx context.Context) (*http.Request, error) {
	var httpReq *http.Request
	var err error
	if r.Entity != nil {
		httpReq, err = http.NewRequestWithContext(ctx, r.Method.String(), r.URI, bytes.NewReader(r.Entity.Content))
	} else {
		httpReq, err = http.NewRequestWithContext(ctx, r.Method.String(), r.URI, nil)
	}
	if err != nil {
		return nil, err
	}

	for _, h := range r.Headers {
		httpReq.Header.Add(h.Name, h.Value)
	}

	if r.Entity != nil {
		httpReq.ContentLength = int64(len(r.Entity.Content))
		if r.Entity.ContentType != "" && httpReq.Header.Get(HeaderContentType) == "" {
			httpReq.Header.Set(HeaderContentType, r.Entity.ContentType)
		}
	}

	return httpReq, nil
}

// String renders the request the way it would appear on the wire, minus transport headers.
func (r *ConcreteRequest) String() string {
	var b strings.Builder
	b.WriteString(r.Method.String())
	b.WriteByte(' ')
	b.WriteString(r.URI)
	b.WriteByte('\n')
	for _, h := range r.Headers {
		b.WriteString(h.Name)
		b.WriteString(": ")
		b.WriteString(h.Value)
		b.WriteByte('\n')
	}
	if r.Entity != nil {
		if r.Entity.ContentType != "" && r.Header(HeaderContentType) == "" {
			b.WriteString(HeaderContentType)
			b.WriteString(": ")
			b.WriteString(r.Entity.ContentType)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
		b.Write(r.Entity.Content)
		b.WriteByte('\n')
	}
	return b.String()
}
