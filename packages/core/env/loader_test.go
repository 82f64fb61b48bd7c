package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnvironment(t *testing.T) {
	envs := map[string]map[string]any{
		"dev":  {"baseUrl": "http://localhost:8080"},
		"prod": {"baseUrl": "https://api.example.com"},
	}

	env := LoadEnvironment("prod", envs)
	assert.Equal(t, "prod", env.Name)
	assert.Equal(t, "https://api.example.com", env.Variables["baseUrl"])

	missing := LoadEnvironment("staging", envs)
	assert.Empty(t, missing.Variables)

	assert.Empty(t, LoadEnvironment("dev", nil).Variables)
}

func TestMergeVariables(t *testing.T) {
	merged := MergeVariables(
		map[string]any{"a": 1, "b": 1},
		nil,
		map[string]any{"b": 2},
	)
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, merged)
}

func TestLoadSystemEnv(t *testing.T) {
	t.Setenv("HTTPCALLVAR_TOKEN", "abc")

	vars := LoadSystemEnv("HTTPCALLVAR_")
	assert.Equal(t, "abc", vars["TOKEN"])
}
