package env

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/abdul-hamid-achik/httpcall/packages/builtin"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Resolver fills {{...}} placeholders in job fields. Lookup order is {{$NAME}} from the
// process environment, {{fn(args)}} built-ins, captures from earlier requests, then
// job variables. Safe for concurrent use.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]any
	captures  map[string]any
	funcs     *builtin.Registry
	warnFunc  WarnFunc
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]any),
		captures:  make(map[string]any),
		funcs:     builtin.NewRegistry(),
	}
}

// SetWarnFunc sets a function to be called when warnings occur (e.g., unresolved variables)
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	r.mu.RLock()
	fn := r.warnFunc
	r.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

func (r *Resolver) SetVariables(vars map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetCapture(requestName, captureName string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := requestName + "." + captureName
	r.captures[key] = value
	r.captures[captureName] = value
}

func (r *Resolver) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := match[2 : len(match)-2]
		expr = strings.TrimSpace(expr)

		if strings.HasPrefix(expr, "$") {
			envVar := expr[1:]
			if val, ok := os.LookupEnv(envVar); ok {
				return val
			}
			r.warn("unresolved environment variable: $%s", envVar)
			return match
		}

		if strings.Contains(expr, "(") {
			if result, ok := r.funcs.Call(expr); ok {
				return fmt.Sprintf("%v", result)
			}
			r.warn("unresolved function call: %s", expr)
			return match
		}

		r.mu.RLock()
		if val, ok := r.captures[expr]; ok {
			r.mu.RUnlock()
			return fmt.Sprintf("%v", val)
		}

		if val, ok := r.variables[expr]; ok {
			r.mu.RUnlock()
			return fmt.Sprintf("%v", val)
		}
		r.mu.RUnlock()

		r.warn("unresolved variable: %s", expr)
		return match
	})
}

// GetUnresolvedVariables returns the placeholder names in input that have no value,
// in order of appearance. Environment and function placeholders are not reported.
func (r *Resolver) GetUnresolvedVariables(input string) []string {
	var unresolved []string
	for _, m := range variablePattern.FindAllStringSubmatch(input, -1) {
		expr := strings.TrimSpace(m[1])
		if strings.HasPrefix(expr, "$") || strings.Contains(expr, "(") {
			continue
		}
		if !r.HasVariable(expr) {
			unresolved = append(unresolved, expr)
		}
	}
	return unresolved
}

// HasUnresolvedVariables reports whether input references a variable with no value.
func (r *Resolver) HasUnresolvedVariables(input string) bool {
	return len(r.GetUnresolvedVariables(input)) > 0
}

func (r *Resolver) HasVariable(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.captures[name]; ok {
		return true
	}
	if _, ok := r.variables[name]; ok {
		return true
	}
	return false
}

func (r *Resolver) Clone() *Resolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewResolver()
	for k, v := range r.variables {
		clone.variables[k] = v
	}
	for k, v := range r.captures {
		clone.captures[k] = v
	}
	return clone
}
