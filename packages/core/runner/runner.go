package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/httpcall/packages/capture"
	"github.com/abdul-hamid-achik/httpcall/packages/check"
	"github.com/abdul-hamid-achik/httpcall/packages/core/env"
	"github.com/abdul-hamid-achik/httpcall/packages/core/job"
	"github.com/abdul-hamid-achik/httpcall/packages/http"
)

type Runner struct {
	client   *http.Client
	resolver *env.Resolver
	config   *Config
	limiter  *rate.Limiter
	log      *zap.SugaredLogger

	mu      sync.Mutex
	clients map[clientKey]*http.Client
}

// clientKey identifies the transport overrides a request can make.
type clientKey struct {
	timeout         int
	ignoreSSLErrors bool
	proxy           string
	followRedirects string
}

type Config struct {
	Environment    string
	Timeout        time.Duration
	FollowRedirect bool
	MaxRedirects   int
	ValidateSSL    bool
	Proxy          string
	DefaultHeaders map[string]string
	Bail           bool
	NameFilter     string
	TagsFilter     []string
	DryRun         bool

	// Rate caps sent requests per second across the runner; 0 means unlimited.
	Rate float64
	// Variables override file and environment variables.
	Variables map[string]any
	// Progress receives the request/response lines of every non-quiet request.
	Progress http.ProgressSink

	Logger *zap.SugaredLogger
}

func NewRunner(cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{FollowRedirect: true, ValidateSSL: true}
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	r := &Runner{
		resolver: env.NewResolver(),
		config:   cfg,
		log:      log,
		clients:  make(map[clientKey]*http.Client),
	}
	r.client = http.NewClient(r.clientOptions(nil)...)
	if cfg.Rate > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}
	r.resolver.SetWarnFunc(func(format string, args ...any) {
		log.Warnf(format, args...)
	})
	return r
}

type RunResult struct {
	File     string
	RunID    string
	Results  []*RequestResult
	Duration time.Duration
	Latency  *LatencyStats // nil when no request got a response
	Passed   int
	Failed   int
	Skipped  int
}

type RequestResult struct {
	Name       string
	Passed     bool
	Skipped    bool
	SkipReason string
	Duration   time.Duration
	Request    *http.ConcreteRequest
	Response   *http.Response // body already drained and closed
	Body       []byte
	Checks     []*check.Result
	Captures   map[string]any
	Error      error
}

// RunFile loads, validates and runs the job file at path.
func (r *Runner) RunFile(ctx context.Context, path string) (*RunResult, error) {
	file, err := job.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading job file: %w", err)
	}
	if err := file.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job file %s: %w", path, err)
	}
	return r.Run(ctx, file), nil
}

// Run executes the requests of file in order. Captures are visible to later
// requests of the same file only.
func (r *Runner) Run(ctx context.Context, file *job.File) *RunResult {
	start := time.Now()
	result := &RunResult{
		File:  file.Path,
		RunID: uuid.NewString(),
	}
	log := r.log.With("run", result.RunID, "file", file.Path)

	environment := env.LoadEnvironment(r.config.Environment, file.Environments)
	resolver := r.resolver.Clone()
	resolver.SetWarnFunc(func(format string, args ...any) {
		log.Warnf(format, args...)
	})
	resolver.SetVariables(env.MergeVariables(file.Variables, environment.Variables, r.config.Variables))

	baseDir := filepath.Dir(file.Path)
	latency := newLatencyRecorder()
	defer func() { result.Latency = latency.stats() }()
	log.Debugw("run started", "requests", len(file.Requests), "environment", environment.Name)

	for i, req := range file.Requests {
		if err := ctx.Err(); err != nil {
			for _, rest := range file.Requests[i:] {
				result.Results = append(result.Results, skipped(rest, "cancelled"))
				result.Skipped++
			}
			break
		}

		if !r.shouldRun(req) {
			result.Results = append(result.Results, skipped(req, "filtered out"))
			result.Skipped++
			continue
		}

		reqResult := r.runRequest(ctx, req, resolver, baseDir)
		result.Results = append(result.Results, reqResult)
		if reqResult.Response != nil {
			latency.record(reqResult.Response.Duration)
		}
		log.Debugw("request finished",
			"request", reqResult.Name,
			"passed", reqResult.Passed,
			"skipped", reqResult.Skipped,
			"duration", reqResult.Duration,
			"error", reqResult.Error,
		)

		switch {
		case reqResult.Skipped:
			result.Skipped++
		case reqResult.Passed:
			result.Passed++
		default:
			result.Failed++
			if r.config.Bail {
				log.Infow("stopping after first failure", "request", reqResult.Name)
				for _, rest := range file.Requests[i+1:] {
					result.Results = append(result.Results, skipped(rest, "bail"))
					result.Skipped++
				}
				result.Duration = time.Since(start)
				return result
			}
		}
	}

	result.Duration = time.Since(start)
	return result
}

// RunRequest runs a single request outside of any job file. Only the runner's
// configured variables are available for placeholders, and relative paths
// resolve against the working directory.
func (r *Runner) RunRequest(ctx context.Context, req *job.Request) *RequestResult {
	resolver := r.resolver.Clone()
	resolver.SetVariables(r.config.Variables)
	return r.runRequest(ctx, req, resolver, "")
}

func skipped(req *job.Request, reason string) *RequestResult {
	return &RequestResult{
		Name:       req.DisplayName(),
		Skipped:    true,
		SkipReason: reason,
	}
}

func (r *Runner) shouldRun(req *job.Request) bool {
	if r.config.NameFilter != "" {
		if req.Name == "" || !matchesPattern(req.Name, r.config.NameFilter) {
			return false
		}
	}

	if len(r.config.TagsFilter) > 0 {
		if !hasAnyTag(req, r.config.TagsFilter) {
			return false
		}
	}

	return true
}

func (r *Runner) runRequest(ctx context.Context, req *job.Request, resolver *env.Resolver, baseDir string) *RequestResult {
	result := &RequestResult{
		Name:     req.DisplayName(),
		Captures: make(map[string]any),
	}

	if missing := resolver.GetUnresolvedVariables(req.URL); len(missing) > 0 {
		result.Error = fmt.Errorf("unresolved variables in url: %s", strings.Join(missing, ", "))
		return result
	}

	spec := req.ToSpec(resolver.Resolve)
	if err := http.ValidateURL(spec.URL); err != nil {
		result.Error = err
		return result
	}

	concrete, err := http.BuildRequest(spec)
	if err != nil {
		result.Error = err
		return result
	}
	result.Request = concrete

	if r.config.DryRun {
		result.Skipped = true
		result.SkipReason = "dry run"
		return result
	}

	sink := r.config.Progress
	if req.Quiet || sink == nil {
		sink = http.DiscardSink
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			result.Error = err
			return result
		}
	}

	start := time.Now()
	resp, err := http.Execute(ctx, r.clientFor(req), concrete, sink)
	if err != nil {
		result.Duration = time.Since(start)
		result.Error = err
		return result
	}
	defer resp.Close()

	body, err := resp.ReadAll()
	result.Duration = time.Since(start)
	result.Response = resp
	if err != nil {
		result.Error = fmt.Errorf("reading response body: %w", err)
		return result
	}
	result.Body = body

	if req.ConsoleLogResponseBody {
		sink.WriteLine("Response: \n" + string(body))
	}

	result.Checks = append(result.Checks, check.Code(req.Codes(), resp.StatusCode))
	if req.ValidResponseContent != "" {
		result.Checks = append(result.Checks, check.Content(body, resolver.Resolve(req.ValidResponseContent)))
	}
	if req.ResponseSchema != "" {
		result.Checks = append(result.Checks, check.Schema(body, resolver.Resolve(req.ResponseSchema), baseDir))
	}
	result.Passed = check.AllPassed(result.Checks)

	if len(req.Captures) > 0 {
		values, missing := capture.ExtractAll(resp, body, req.Captures)
		for name, value := range values {
			result.Captures[name] = value
			resolver.SetCapture(req.Name, name, value)
		}
		if len(missing) > 0 {
			r.log.Warnw("captures not found in response", "request", result.Name, "captures", strings.Join(missing, ","))
		}
	}

	if req.OutputFile != "" {
		if err := writeOutputFile(resolver.Resolve(req.OutputFile), baseDir, body); err != nil {
			result.Error = err
			result.Passed = false
		}
	}

	return result
}

// clientFor returns the shared client unless req overrides transport settings.
// Clients for overrides are built once per distinct set and reused.
func (r *Runner) clientFor(req *job.Request) http.Doer {
	if req.Timeout == 0 && !req.IgnoreSSLErrors && req.HTTPProxy == "" && req.FollowRedirects == nil {
		return r.client
	}

	key := clientKey{
		timeout:         req.Timeout,
		ignoreSSLErrors: req.IgnoreSSLErrors,
		proxy:           req.HTTPProxy,
	}
	if req.FollowRedirects != nil {
		key.followRedirects = fmt.Sprint(*req.FollowRedirects)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	client, ok := r.clients[key]
	if !ok {
		client = http.NewClient(r.clientOptions(req)...)
		r.clients[key] = client
	}
	return client
}

// Close releases the idle connections of every client the runner created.
func (r *Runner) Close() {
	r.client.CloseIdleConnections()

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		c.CloseIdleConnections()
	}
}

func (r *Runner) clientOptions(req *job.Request) []http.ClientOption {
	cfg := r.config
	opts := []http.ClientOption{
		http.WithFollowRedirects(cfg.FollowRedirect),
		http.WithValidateSSL(cfg.ValidateSSL),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, http.WithTimeout(cfg.Timeout))
	}
	if cfg.MaxRedirects > 0 {
		opts = append(opts, http.WithMaxRedirects(cfg.MaxRedirects))
	}
	if cfg.Proxy != "" {
		opts = append(opts, http.WithProxy(cfg.Proxy))
	}
	if len(cfg.DefaultHeaders) > 0 {
		opts = append(opts, http.WithDefaultHeaders(cfg.DefaultHeaders))
	}

	if req == nil {
		return opts
	}
	if req.Timeout > 0 {
		opts = append(opts, http.WithTimeout(req.TimeoutDuration()))
	}
	if req.IgnoreSSLErrors {
		opts = append(opts, http.WithValidateSSL(false))
	}
	if req.HTTPProxy != "" {
		opts = append(opts, http.WithProxy(req.HTTPProxy))
	}
	if req.FollowRedirects != nil {
		opts = append(opts, http.WithFollowRedirects(*req.FollowRedirects))
	}
	return opts
}

func writeOutputFile(path, baseDir string, body []byte) error {
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, body, 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	return nil
}

func matchesPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	if len(pattern) > 1 && pattern[0] == '*' && pattern[len(pattern)-1] == '*' {
		return strings.Contains(name, pattern[1:len(pattern)-1])
	}

	if pattern[0] == '*' {
		return strings.HasSuffix(name, pattern[1:])
	}

	if pattern[len(pattern)-1] == '*' {
		return strings.HasPrefix(name, pattern[:len(pattern)-1])
	}

	return name == pattern
}

func hasAnyTag(req *job.Request, filters []string) bool {
	for _, filter := range filters {
		if req.HasTag(filter) {
			return true
		}
	}
	return false
}
