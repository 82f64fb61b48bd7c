package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/httpcall/packages/core/runner"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Summary  JSONSummary   `json:"summary"`
	Runs     []JSONRun     `json:"runs"`
	Requests []JSONRequest `json:"requests"`
	Errors   []string      `json:"errors,omitempty"`
	Duration float64       `json:"duration"`
	Time     string        `json:"time"`
}

type JSONSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// JSONRun describes one job file run.
type JSONRun struct {
	File     string       `json:"file"`
	RunID    string       `json:"runId"`
	Duration float64      `json:"duration"`
	Latency  *JSONLatency `json:"latency,omitempty"`
}

// JSONLatency is in milliseconds.
type JSONLatency struct {
	Count int64   `json:"count"`
	Min   float64 `json:"min"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Max   float64 `json:"max"`
}

// JSONRequest is the result of one job request.
type JSONRequest struct {
	Name       string         `json:"name"`
	File       string         `json:"file"`
	RunID      string         `json:"runId"`
	Passed     bool           `json:"passed"`
	Skipped    bool           `json:"skipped,omitempty"`
	SkipReason string         `json:"skipReason,omitempty"`
	Duration   float64        `json:"duration"`
	Error      string         `json:"error,omitempty"`
	Request    *JSONSent      `json:"request,omitempty"`
	Response   *JSONResponse  `json:"response,omitempty"`
	Checks     []JSONCheck    `json:"checks,omitempty"`
	Captures   map[string]any `json:"captures,omitempty"`
}

// JSONSent is the request that was (or, in a dry run, would have been) sent.
type JSONSent struct {
	Method  string              `json:"method"`
	URL     string              `json:"url"`
	Headers map[string][]string `json:"headers,omitempty"`
	Body    string              `json:"body,omitempty"`
}

type JSONResponse struct {
	StatusCode int                 `json:"statusCode"`
	Status     string              `json:"status"`
	Headers    map[string][]string `json:"headers,omitempty"`
	Duration   float64             `json:"duration"`
}

type JSONCheck struct {
	Subject  string `json:"subject"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
	Passed   bool   `json:"passed"`
	Message  string `json:"message,omitempty"`
}

// JSONFormatter accumulates results and writes them as one document on Flush.
type JSONFormatter struct {
	writer  io.Writer
	runs    []JSONRun
	results []JSONRequest
	errors  []string
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:  os.Stdout,
		results: make([]JSONRequest, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	run := JSONRun{
		File:     result.File,
		RunID:    result.RunID,
		Duration: float64(result.Duration.Milliseconds()),
	}
	if l := result.Latency; l != nil {
		run.Latency = &JSONLatency{
			Count: l.Count,
			Min:   millis(l.Min),
			Mean:  millis(l.Mean),
			P50:   millis(l.P50),
			P95:   millis(l.P95),
			P99:   millis(l.P99),
			Max:   millis(l.Max),
		}
	}
	f.runs = append(f.runs, run)

	for _, r := range result.Results {
		entry := JSONRequest{
			Name:     r.Name,
			File:     result.File,
			RunID:    result.RunID,
			Passed:   r.Passed,
			Skipped:  r.Skipped,
			Duration: float64(r.Duration.Milliseconds()),
		}

		if r.SkipReason != "" && r.SkipReason != "filtered out" {
			entry.SkipReason = r.SkipReason
		}

		if r.Error != nil {
			entry.Error = r.Error.Error()
		}

		if r.Request != nil {
			sent := &JSONSent{
				Method: r.Request.Method.String(),
				URL:    r.Request.URI,
			}
			if len(r.Request.Headers) > 0 {
				sent.Headers = make(map[string][]string)
				for _, h := range r.Request.Headers {
					sent.Headers[h.Name] = append(sent.Headers[h.Name], h.Value)
				}
			}
			if r.Request.HasEntity() {
				sent.Body = string(r.Request.Entity.Content)
			}
			entry.Request = sent
		}

		if r.Response != nil {
			entry.Response = &JSONResponse{
				StatusCode: r.Response.StatusCode,
				Status:     r.Response.Status,
				Headers:    r.Response.Headers,
				Duration:   float64(r.Response.DurationMs()),
			}
		}

		for _, c := range r.Checks {
			entry.Checks = append(entry.Checks, JSONCheck{
				Subject:  c.Subject,
				Expected: c.Expected,
				Actual:   c.Actual,
				Passed:   c.Passed,
				Message:  c.Message,
			})
		}

		if len(r.Captures) > 0 {
			entry.Captures = r.Captures
		}

		f.results = append(f.results, entry)
	}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func (f *JSONFormatter) FormatError(err error) {
	f.errors = append(f.errors, err.Error())
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	var passed, failed, skipped int
	for _, t := range f.results {
		if t.Skipped {
			skipped++
		} else if t.Passed {
			passed++
		} else {
			failed++
		}
	}

	output := JSONOutput{
		Summary: JSONSummary{
			Total:   len(f.results),
			Passed:  passed,
			Failed:  failed,
			Skipped: skipped,
		},
		Runs:     f.runs,
		Requests: f.results,
		Errors:   f.errors,
		Duration: float64(totalDuration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
