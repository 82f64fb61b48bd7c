package env

import (
	"os"
	"strings"
)

type Environment struct {
	Name      string
	Variables map[string]any
}

// LoadEnvironment picks envName out of a job file's environments section.
// A missing name yields an empty environment.
func LoadEnvironment(envName string, fileEnvs map[string]map[string]any) *Environment {
	env := &Environment{
		Name:      envName,
		Variables: make(map[string]any),
	}

	if vars, ok := fileEnvs[envName]; ok {
		for k, v := range vars {
			env.Variables[k] = v
		}
	}

	return env
}

// MergeVariables merges sources left to right; later sources win.
func MergeVariables(sources ...map[string]any) map[string]any {
	result := make(map[string]any)
	for _, src := range sources {
		for k, v := range src {
			result[k] = v
		}
	}
	return result
}

// LoadSystemEnv returns process environment variables whose names start with prefix,
// with the prefix removed. An empty prefix returns everything.
func LoadSystemEnv(prefix string) map[string]any {
	result := make(map[string]any)
	for _, e := range os.Environ() {
		key, value, ok := strings.Cut(e, "=")
		if !ok {
			continue
		}
		if prefix == "" {
			result[key] = value
		} else if len(key) > len(prefix) && strings.HasPrefix(key, prefix) {
			result[key[len(prefix):]] = value
		}
	}
	return result
}
