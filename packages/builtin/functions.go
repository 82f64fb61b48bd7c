package builtin

import (
	"encoding/base64"
	"math/rand"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Func is a template function. Arguments arrive unquoted and trimmed.
type Func func(args []string) any

type Registry struct {
	funcs map[string]Func
}

func NewRegistry() *Registry {
	r := &Registry{
		funcs: make(map[string]Func),
	}
	r.registerDefaults()
	return r
}

func (r *Registry) registerDefaults() {
	r.funcs["now"] = funcNow
	r.funcs["date"] = funcDate
	r.funcs["timestamp"] = funcTimestamp
	r.funcs["timestampMs"] = funcTimestampMs
	r.funcs["uuid"] = funcUUID
	r.funcs["random"] = funcRandom
	r.funcs["randomString"] = funcRandomString
	r.funcs["base64"] = funcBase64
	r.funcs["basicAuth"] = funcBasicAuth
	r.funcs["urlEncode"] = funcURLEncode
}

func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// Names returns the registered function names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	return names
}

var funcCallPattern = regexp.MustCompile(`^(\w+)\((.*)\)$`)

// Call evaluates an expression such as `random(1, 10)`. The second result is false when
// expr is not a call to a registered function.
func (r *Registry) Call(expr string) (any, bool) {
	matches := funcCallPattern.FindStringSubmatch(expr)
	if matches == nil {
		return nil, false
	}

	fn, ok := r.funcs[matches[1]]
	if !ok {
		return nil, false
	}

	var args []string
	if matches[2] != "" {
		args = parseArgs(matches[2])
	}

	return fn(args), true
}

func parseArgs(s string) []string {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := byte(0)

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case !inQuote && (ch == '"' || ch == '\''):
			inQuote = true
			quoteChar = ch
		case inQuote && ch == quoteChar:
			inQuote = false
			quoteChar = 0
		case !inQuote && ch == ',':
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}

	if current.Len() > 0 {
		args = append(args, strings.TrimSpace(current.String()))
	}

	return args
}

func intArg(args []string, i, def int) int {
	if len(args) <= i {
		return def
	}
	v, err := strconv.Atoi(args[i])
	if err != nil {
		return def
	}
	return v
}

func funcNow(_ []string) any {
	return time.Now().UTC().Format(time.RFC3339)
}

func funcDate(args []string) any {
	format := "2006-01-02"
	if len(args) >= 1 {
		format = args[0]
	}
	return time.Now().UTC().Format(format)
}

func funcTimestamp(_ []string) any {
	return time.Now().Unix()
}

func funcTimestampMs(_ []string) any {
	return time.Now().UnixMilli()
}

func funcUUID(_ []string) any {
	return uuid.New().String()
}

func funcRandom(args []string) any {
	min, max := intArg(args, 0, 0), intArg(args, 1, 100)
	if max < min {
		min, max = max, min
	}
	span := max - min + 1
	if span <= 0 {
		return min
	}
	return rand.Intn(span) + min
}

func funcRandomString(args []string) any {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	length := intArg(args, 0, 16)
	if length < 0 {
		length = 0
	}
	result := make([]byte, length)
	for i := range result {
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}

func funcBase64(args []string) any {
	if len(args) < 1 {
		return ""
	}
	return base64.StdEncoding.EncodeToString([]byte(strings.Join(args, ",")))
}

// funcBasicAuth returns the value of a basic Authorization header for user and password.
func funcBasicAuth(args []string) any {
	if len(args) < 2 {
		return ""
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(args[0]+":"+args[1]))
}

func funcURLEncode(args []string) any {
	if len(args) < 1 {
		return ""
	}
	return url.QueryEscape(args[0])
}
