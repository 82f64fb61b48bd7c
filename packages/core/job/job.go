package job

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/httpcall/packages/check"
	"github.com/abdul-hamid-achik/httpcall/packages/http"
)

// File is a parsed job file.
type File struct {
	Path         string                    `yaml:"-"`
	Variables    map[string]any            `yaml:"variables,omitempty"`
	Environments map[string]map[string]any `yaml:"environments,omitempty"`
	Requests     []*Request                `yaml:"requests"`
}

// Request describes one HTTP call and what to do with its response.
type Request struct {
	Name           string               `yaml:"name,omitempty"`
	Description    string               `yaml:"description,omitempty"`
	Tags           []string             `yaml:"tags,omitempty"`
	URL            string               `yaml:"url"`
	HTTPMode       string               `yaml:"httpMode,omitempty"`
	ContentType    string               `yaml:"contentType,omitempty"`
	AcceptType     string               `yaml:"acceptType,omitempty"`
	Authentication *Authentication      `yaml:"authentication,omitempty"`
	CustomHeaders  []http.NameValuePair `yaml:"customHeaders,omitempty"`
	Parameters     []http.NameValuePair `yaml:"parameters,omitempty"`
	RequestBody    string               `yaml:"requestBody,omitempty"`

	Timeout         int    `yaml:"timeout,omitempty"` // seconds
	IgnoreSSLErrors bool   `yaml:"ignoreSslErrors,omitempty"`
	HTTPProxy       string `yaml:"httpProxy,omitempty"`
	FollowRedirects *bool  `yaml:"followRedirects,omitempty"`

	ValidResponseCodes   string            `yaml:"validResponseCodes,omitempty"`
	ValidResponseContent string            `yaml:"validResponseContent,omitempty"`
	ResponseSchema       string            `yaml:"responseSchema,omitempty"`
	Captures             map[string]string `yaml:"captures,omitempty"`

	ConsoleLogResponseBody bool   `yaml:"consoleLogResponseBody,omitempty"`
	OutputFile             string `yaml:"outputFile,omitempty"`
	Quiet                  bool   `yaml:"quiet,omitempty"`

	Line int `yaml:"-"`
}

const (
	AuthBasic  = "basic"
	AuthBearer = "bearer"
)

// Authentication resolves to an Authorization header.
type Authentication struct {
	Type     string `yaml:"type"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Token    string `yaml:"token,omitempty"`
}

// DisplayName returns the request name, or "METHOD url" when unnamed.
func (r *Request) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("%s %s", r.Method(), r.URL)
}

// Method returns the request method. An empty httpMode means GET.
func (r *Request) Method() http.Method {
	if strings.TrimSpace(r.HTTPMode) == "" {
		return http.MethodGet
	}
	return http.ParseMethod(r.HTTPMode)
}

// TimeoutDuration returns the per-request timeout, zero meaning "use the client's".
func (r *Request) TimeoutDuration() time.Duration {
	return time.Duration(r.Timeout) * time.Second
}

// Codes returns the valid response code ranges, defaulting to check.DefaultResponseCodes.
func (r *Request) Codes() string {
	if r.ValidResponseCodes == "" {
		return check.DefaultResponseCodes
	}
	return r.ValidResponseCodes
}

// HasTag reports whether the request is tagged with tag.
func (r *Request) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Validate checks the request for errors that would make it impossible to run.
func (r *Request) Validate() error {
	var errs []error

	if strings.TrimSpace(r.URL) == "" {
		errs = append(errs, errors.New("url is required"))
	}
	if mode := strings.TrimSpace(r.HTTPMode); mode != "" && !http.Method(strings.ToUpper(mode)).IsKnown() {
		errs = append(errs, fmt.Errorf("unknown httpMode %q", r.HTTPMode))
	}
	if r.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %d", r.Timeout))
	}
	if _, err := check.ParseCodes(r.Codes()); err != nil {
		errs = append(errs, err)
	}
	if a := r.Authentication; a != nil {
		switch strings.ToLower(a.Type) {
		case AuthBasic:
			if a.Username == "" {
				errs = append(errs, errors.New("basic authentication needs a username"))
			}
		case AuthBearer:
			if a.Token == "" {
				errs = append(errs, errors.New("bearer authentication needs a token"))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown authentication type %q", a.Type))
		}
	}
	for _, h := range r.CustomHeaders {
		if strings.TrimSpace(h.Name) == "" {
			errs = append(errs, errors.New("custom header with empty name"))
		}
	}

	return errors.Join(errs...)
}

// ToSpec resolves placeholders through resolve and assembles a RequestSpec.
// Headers are ordered contentType, acceptType, authentication, then customHeaders.
func (r *Request) ToSpec(resolve func(string) string) *http.RequestSpec {
	spec := http.NewRequestSpec(r.Method(), resolve(r.URL))

	if r.ContentType != "" {
		spec.AddHeader("Content-Type", resolve(r.ContentType))
	}
	if r.AcceptType != "" {
		spec.AddHeader("Accept", resolve(r.AcceptType))
	}
	if value := r.authorization(resolve); value != "" {
		spec.AddHeader("Authorization", value)
	}
	for _, h := range r.CustomHeaders {
		spec.AddHeader(h.Name, resolve(h.Value))
	}
	for _, p := range r.Parameters {
		spec.AddParameter(resolve(p.Name), resolve(p.Value))
	}

	spec.SetBody(resolve(r.RequestBody))
	return spec
}

func (r *Request) authorization(resolve func(string) string) string {
	a := r.Authentication
	if a == nil {
		return ""
	}
	switch strings.ToLower(a.Type) {
	case AuthBasic:
		creds := resolve(a.Username) + ":" + resolve(a.Password)
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
	case AuthBearer:
		return "Bearer " + resolve(a.Token)
	}
	return ""
}

// Validate checks every request and that request names are unique.
func (f *File) Validate() error {
	if len(f.Requests) == 0 {
		return errors.New("no requests defined")
	}

	var errs []error
	seen := make(map[string]int)
	for i, r := range f.Requests {
		if err := r.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("request %d (%s, line %d): %w", i+1, r.DisplayName(), r.Line, err))
		}
		if r.Name == "" {
			continue
		}
		if prev, ok := seen[r.Name]; ok {
			errs = append(errs, fmt.Errorf("request %d: duplicate name %q (first used by request %d)", i+1, r.Name, prev))
			continue
		}
		seen[r.Name] = i + 1
	}

	return errors.Join(errs...)
}
