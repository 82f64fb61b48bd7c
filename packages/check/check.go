package check

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// DefaultResponseCodes accepts informational, success and redirect statuses.
const DefaultResponseCodes = "100:399"

const (
	SubjectStatus  = "status"
	SubjectContent = "content"
	SubjectSchema  = "schema"
)

// Result is the outcome of one response check.
type Result struct {
	Subject  string
	Passed   bool
	Expected any
	Actual   any
	Message  string
}

// CodeRange is an inclusive range of status codes.
type CodeRange struct {
	From int
	To   int
}

func (r CodeRange) Contains(code int) bool {
	return code >= r.From && code <= r.To
}

func (r CodeRange) String() string {
	if r.From == r.To {
		return strconv.Itoa(r.From)
	}
	return fmt.Sprintf("%d:%d", r.From, r.To)
}

// ParseCodes parses a comma separated list of codes and from:to ranges, e.g. "200,300:304".
func ParseCodes(spec string) ([]CodeRange, error) {
	var ranges []CodeRange
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		fromStr, toStr, isRange := strings.Cut(part, ":")
		from, err := parseCode(fromStr)
		if err != nil {
			return nil, fmt.Errorf("invalid response code %q in %q", part, spec)
		}
		to := from
		if isRange {
			if to, err = parseCode(toStr); err != nil {
				return nil, fmt.Errorf("invalid response code %q in %q", part, spec)
			}
		}
		if from > to {
			return nil, fmt.Errorf("invalid response code range %q: %d is greater than %d", part, from, to)
		}
		ranges = append(ranges, CodeRange{From: from, To: to})
	}

	if len(ranges) == 0 {
		return nil, fmt.Errorf("invalid response code spec %q: no codes", spec)
	}
	return ranges, nil
}

func parseCode(s string) (int, error) {
	code, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if code < 100 || code > 999 {
		return 0, fmt.Errorf("status code %d out of range", code)
	}
	return code, nil
}

// Code checks code against spec. An empty spec means DefaultResponseCodes.
func Code(spec string, code int) *Result {
	if spec == "" {
		spec = DefaultResponseCodes
	}
	result := &Result{Subject: SubjectStatus, Expected: spec, Actual: code}

	ranges, err := ParseCodes(spec)
	if err != nil {
		result.Message = err.Error()
		return result
	}

	for _, r := range ranges {
		if r.Contains(code) {
			result.Passed = true
			return result
		}
	}
	result.Message = fmt.Sprintf("response code %d is not in the accepted range %s", code, spec)
	return result
}

// Content checks that body contains expected. An empty expectation always passes.
func Content(body []byte, expected string) *Result {
	result := &Result{Subject: SubjectContent, Expected: expected, Actual: len(body)}
	if expected == "" || bytes.Contains(body, []byte(expected)) {
		result.Passed = true
		return result
	}
	result.Message = fmt.Sprintf("response does not contain expected content %q", expected)
	return result
}

// Schema validates body against the JSON schema at schemaPath. Relative paths are
// resolved against baseDir.
func Schema(body []byte, schemaPath, baseDir string) *Result {
	result := &Result{Subject: SubjectSchema, Expected: schemaPath}

	if !filepath.IsAbs(schemaPath) && baseDir != "" {
		schemaPath = filepath.Join(baseDir, schemaPath)
	}

	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		result.Message = fmt.Sprintf("failed to read schema file: %v", err)
		return result
	}

	validation, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaData),
		gojsonschema.NewBytesLoader(body),
	)
	if err != nil {
		result.Message = fmt.Sprintf("schema validation error: %v", err)
		return result
	}

	if validation.Valid() {
		result.Passed = true
		return result
	}

	var errs []string
	for _, desc := range validation.Errors() {
		errs = append(errs, desc.String())
	}
	result.Actual = errs
	result.Message = fmt.Sprintf("schema validation failed: %s", strings.Join(errs, "; "))
	return result
}

// AllPassed reports whether every result passed.
func AllPassed(results []*Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
