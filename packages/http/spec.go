package http

import "strings"

// Method is an HTTP request method understood by the builder.
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
)

// Methods lists every method in declaration order.
var Methods = []Method{
	MethodGet,
	MethodPost,
	MethodPut,
	MethodPatch,
	MethodDelete,
	MethodHead,
	MethodOptions,
	MethodTrace,
}

// IsKnown reports whether m is one of Methods.
func (m Method) IsKnown() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

func (m Method) String() string {
	return string(m)
}

// ParseMethod upper-cases s and maps it to a Method. Unknown values fall back to POST.
func ParseMethod(s string) Method {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if m.IsKnown() {
		return m
	}
	return MethodPost
}

// NameValuePair is a header or a form/query parameter.
type NameValuePair struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Pair is shorthand for NameValuePair{name, value}.
func Pair(name, value string) NameValuePair {
	return NameValuePair{Name: name, Value: value}
}

// RequestSpec is the declarative description of a single HTTP call.
// Header names compare case-insensitively and may repeat.
// An empty Body is treated the same as no body.
type RequestSpec struct {
	URL        string
	Method     Method
	Headers    []NameValuePair
	Parameters []NameValuePair
	Body       string
}

// NewRequestSpec returns a spec for method and url with no headers, parameters or body.
func NewRequestSpec(method Method, url string) *RequestSpec {
	return &RequestSpec{
		URL:    url,
		Method: method,
	}
}

func (s *RequestSpec) AddHeader(name, value string) *RequestSpec {
	s.Headers = append(s.Headers, Pair(name, value))
	return s
}

func (s *RequestSpec) AddParameter(name, value string) *RequestSpec {
	s.Parameters = append(s.Parameters, Pair(name, value))
	return s
}

func (s *RequestSpec) SetBody(body string) *RequestSpec {
	s.Body = body
	return s
}

// HeaderValue returns the value of the first header named name, compared case-insensitively.
func HeaderValue(headers []NameValuePair, name string) (string, bool) {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}
