package capture

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/abdul-hamid-achik/httpcall/packages/http"
)

const (
	// SourceStatus captures the status code.
	SourceStatus = "status"
	// SourceHeaderPrefix captures a response header, e.g. "header:Location".
	SourceHeaderPrefix = "header:"
	// SourceBody captures the whole body.
	SourceBody = "body"
)

// Extractor pulls values out of a response whose body has already been read.
type Extractor struct {
	response *http.Response
	body     []byte
	bodyJSON gjson.Result
	isJSON   bool
}

func NewExtractor(resp *http.Response, body []byte) *Extractor {
	e := &Extractor{
		response: resp,
		body:     body,
	}
	if resp.IsJSON() || gjson.ValidBytes(body) {
		e.bodyJSON = gjson.ParseBytes(body)
		e.isJSON = true
	}
	return e
}

// Extract evaluates expr: "status", "header:<Name>", "body", or a gjson path into the body.
func (e *Extractor) Extract(expr string) (any, bool) {
	expr = strings.TrimSpace(expr)
	switch {
	case expr == SourceStatus:
		return e.response.StatusCode, true
	case strings.HasPrefix(expr, SourceHeaderPrefix):
		return e.extractFromHeader(strings.TrimPrefix(expr, SourceHeaderPrefix))
	case expr == SourceBody || expr == "":
		return e.extractFromBody("")
	default:
		return e.extractFromBody(expr)
	}
}

func (e *Extractor) extractFromBody(path string) (any, bool) {
	if !e.isJSON {
		if path == "" {
			return string(e.body), true
		}
		return nil, false
	}

	if path == "" {
		return e.bodyJSON.Value(), true
	}

	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

func (e *Extractor) extractFromHeader(name string) (any, bool) {
	value := e.response.Header(strings.TrimSpace(name))
	if value == "" {
		return nil, false
	}
	return value, true
}

// ExtractAll evaluates every capture. Captures that find nothing are left out of the
// result and their names returned as missing.
func ExtractAll(resp *http.Response, body []byte, captures map[string]string) (map[string]any, []string) {
	extractor := NewExtractor(resp, body)
	results := make(map[string]any)
	var missing []string

	for name, expr := range captures {
		if value, ok := extractor.Extract(expr); ok {
			results[name] = value
		} else {
			missing = append(missing, name)
		}
	}

	return results, missing
}
