// Package curl converts curl command lines into httpcall job requests.
package curl

import (
	"bufio"
	"fmt"
	"io"
	neturl "net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/httpcall/packages/core/job"
	"github.com/abdul-hamid-achik/httpcall/packages/http"
)

var (
	urlPathPattern  = regexp.MustCompile(`https?://[^/]+(/[^?#]*)?`)
	nonIdentPattern = regexp.MustCompile(`[^a-zA-Z0-9]+`)
)

// Converter turns curl commands into job requests.
type Converter struct {
	expectSuccess bool
}

type Option func(*Converter)

// WithExpectSuccess makes converted requests accept only 2xx responses
// instead of the default code range.
func WithExpectSuccess(expect bool) Option {
	return func(c *Converter) {
		c.expectSuccess = expect
	}
}

func NewConverter(opts ...Option) *Converter {
	c := &Converter{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert parses a single curl command line.
func (c *Converter) Convert(curlCmd string) (*job.Request, error) {
	curlCmd = strings.TrimSpace(curlCmd)
	if curlCmd == "curl" {
		return nil, fmt.Errorf("no URL specified")
	}
	curlCmd = strings.TrimPrefix(curlCmd, "curl ")

	req := &job.Request{}
	var (
		method  string
		data    []string
		getMode bool
	)

	tokens := tokenize(curlCmd)
	value := func(i int) (string, error) {
		if i+1 >= len(tokens) {
			return "", fmt.Errorf("missing value for %s", tokens[i])
		}
		return tokens[i+1], nil
	}

	for i := 0; i < len(tokens); i++ {
		token := tokens[i]

		switch token {
		case "-X", "--request":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			method = strings.ToUpper(v)
			i++

		case "-H", "--header":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			name, val, ok := strings.Cut(v, ":")
			if ok {
				addHeader(req, strings.TrimSpace(name), strings.TrimSpace(val))
			}
			i++

		case "-d", "--data", "--data-raw", "--data-binary":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			data = append(data, v)
			i++

		case "--data-urlencode":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			data = append(data, urlEncodeData(v))
			i++

		case "-G", "--get":
			getMode = true

		case "-u", "--user":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			user, pass, _ := strings.Cut(v, ":")
			req.Authentication = &job.Authentication{Type: job.AuthBasic, Username: user, Password: pass}
			i++

		case "-k", "--insecure":
			req.IgnoreSSLErrors = true

		case "-L", "--location":
			follow := true
			req.FollowRedirects = &follow

		case "-x", "--proxy":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			req.HTTPProxy = v
			i++

		case "-m", "--max-time":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			secs, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid %s value %q", token, v)
			}
			req.Timeout = int(secs + 0.999)
			i++

		case "-o", "--output":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			req.OutputFile = v
			i++

		case "-A", "--user-agent":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			addHeader(req, "User-Agent", v)
			i++

		case "-e", "--referer":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			addHeader(req, "Referer", v)
			i++

		case "-b", "--cookie":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			addHeader(req, "Cookie", v)
			i++

		default:
			if strings.HasPrefix(token, "-") {
				// unknown flag; swallow its value when it has one
				if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") && !isURL(tokens[i+1]) {
					i++
				}
				continue
			}
			if req.URL == "" && isURL(token) {
				req.URL = token
			}
		}
	}

	if req.URL == "" {
		return nil, fmt.Errorf("no URL found in curl command")
	}

	switch {
	case getMode:
		// -G sends data as query parameters
		for _, d := range data {
			req.Parameters = append(req.Parameters, splitPairs(d)...)
		}
		if method == "" {
			method = string(http.MethodGet)
		}
	case len(data) > 0:
		req.RequestBody = strings.Join(data, "&")
		if method == "" {
			method = string(http.MethodPost)
		}
	}
	if method != "" && method != string(http.MethodGet) {
		req.HTTPMode = method
	}

	if c.expectSuccess {
		req.ValidResponseCodes = "200:299"
	}
	req.Name = generateName(req.URL, req.Method())

	return req, nil
}

// ConvertReader converts every curl command in r into one job file. Blank
// lines and # comments are skipped and trailing backslashes join lines.
// Names are made unique by suffixing a counter.
func (c *Converter) ConvertReader(r io.Reader) (*job.File, error) {
	var commands []string
	var current strings.Builder
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasSuffix(line, "\\") {
			current.WriteString(strings.TrimSuffix(line, "\\"))
			current.WriteString(" ")
			continue
		}

		current.WriteString(line)
		commands = append(commands, current.String())
		current.Reset()
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read commands: %w", err)
	}
	if current.Len() > 0 {
		commands = append(commands, current.String())
	}

	file := &job.File{}
	seen := make(map[string]int)
	for i, cmd := range commands {
		req, err := c.Convert(cmd)
		if err != nil {
			return nil, fmt.Errorf("failed to convert command %d: %w", i+1, err)
		}
		seen[req.Name]++
		if n := seen[req.Name]; n > 1 {
			req.Name = fmt.Sprintf("%s_%d", req.Name, n)
		}
		file.Requests = append(file.Requests, req)
	}
	if len(file.Requests) == 0 {
		return nil, fmt.Errorf("no curl commands found")
	}

	return file, nil
}

// addHeader maps the headers a job request models directly onto their fields
// and keeps the rest, in order, as custom headers.
func addHeader(req *job.Request, name, value string) {
	switch {
	case strings.EqualFold(name, http.HeaderContentType) && req.ContentType == "":
		req.ContentType = value
	case strings.EqualFold(name, "Accept") && req.AcceptType == "":
		req.AcceptType = value
	case strings.EqualFold(name, "Authorization") && req.Authentication == nil && strings.HasPrefix(value, "Bearer "):
		req.Authentication = &job.Authentication{Type: job.AuthBearer, Token: strings.TrimPrefix(value, "Bearer ")}
	default:
		req.CustomHeaders = append(req.CustomHeaders, http.Pair(name, value))
	}
}

// splitPairs splits a&b=c style data into pairs without decoding it.
// urlEncodeData applies curl's --data-urlencode rules: "content" and "=content"
// encode the whole content, "name=content" encodes only the content.
func urlEncodeData(v string) string {
	name, content, ok := strings.Cut(v, "=")
	switch {
	case !ok:
		return neturl.QueryEscape(v)
	case name == "":
		return neturl.QueryEscape(content)
	default:
		return name + "=" + neturl.QueryEscape(content)
	}
}

// splitPairs decodes form data back into pairs. Parameters are encoded again
// when the request is built.
func splitPairs(data string) []http.NameValuePair {
	var pairs []http.NameValuePair
	for _, part := range strings.Split(data, "&") {
		if part == "" {
			continue
		}
		name, value, _ := strings.Cut(part, "=")
		pairs = append(pairs, http.Pair(unescape(name), unescape(value)))
	}
	return pairs
}

func unescape(s string) string {
	if u, err := neturl.QueryUnescape(s); err == nil {
		return u
	}
	return s
}

// tokenize splits a curl command into tokens, respecting quotes.
func tokenize(cmd string) []string {
	var tokens []string
	var current strings.Builder
	inSingleQuote := false
	inDoubleQuote := false
	escaped := false

	for _, r := range cmd {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}

		switch r {
		case '\\':
			if inSingleQuote {
				current.WriteRune(r)
			} else {
				escaped = true
			}
		case '\'':
			if !inDoubleQuote {
				inSingleQuote = !inSingleQuote
			} else {
				current.WriteRune(r)
			}
		case '"':
			if !inSingleQuote {
				inDoubleQuote = !inDoubleQuote
			} else {
				current.WriteRune(r)
			}
		case ' ', '\t':
			if inSingleQuote || inDoubleQuote {
				current.WriteRune(r)
			} else if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "{{")
}

// generateName builds an identifier like get_users_7 from the method and URL path.
func generateName(url string, method http.Method) string {
	path := "/"
	if matches := urlPathPattern.FindStringSubmatch(url); len(matches) > 1 && matches[1] != "" {
		path = matches[1]
	}

	path = strings.Trim(path, "/")
	if path == "" {
		path = "root"
	}

	name := strings.ToLower(method.String()) + "_" + path
	return strings.Trim(nonIdentPattern.ReplaceAllString(name, "_"), "_")
}
