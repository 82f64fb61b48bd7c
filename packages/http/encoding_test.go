package http

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendParamsToURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		params   []NameValuePair
		expected string
	}{
		{
			name:     "no params is identity",
			url:      "http://example.com/path",
			params:   nil,
			expected: "http://example.com/path",
		},
		{
			name:     "empty params keep url byte for byte",
			url:      "HTTP://Example.com:80/a/../b",
			params:   []NameValuePair{},
			expected: "HTTP://Example.com:80/a/../b",
		},
		{
			name:     "single param",
			url:      "http://example.com/path",
			params:   []NameValuePair{Pair("a", "1")},
			expected: "http://example.com/path?a=1",
		},
		{
			name:     "order preserved",
			url:      "http://example.com",
			params:   []NameValuePair{Pair("z", "1"), Pair("a", "2"), Pair("m", "3")},
			expected: "http://example.com?z=1&a=2&m=3",
		},
		{
			name:     "values are encoded",
			url:      "http://example.com/search",
			params:   []NameValuePair{Pair("q", "b c&d"), Pair("e", "é")},
			expected: "http://example.com/search?q=b+c%26d&e=%C3%A9",
		},
		{
			name:     "duplicates allowed",
			url:      "http://example.com",
			params:   []NameValuePair{Pair("a", "1"), Pair("a", "2")},
			expected: "http://example.com?a=1&a=2",
		},
		{
			name:     "merged with existing query",
			url:      "http://example.com/path?x=9",
			params:   []NameValuePair{Pair("a", "1")},
			expected: "http://example.com/path?x=9&a=1",
		},
		{
			name:     "fragment kept after query",
			url:      "http://example.com/path#top",
			params:   []NameValuePair{Pair("a", "1")},
			expected: "http://example.com/path?a=1#top",
		},
		{
			name:     "trailing question mark",
			url:      "http://example.com/path?",
			params:   []NameValuePair{Pair("a", "1")},
			expected: "http://example.com/path?a=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AppendParamsToURL(tt.url, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestAppendParamsToURL_Malformed(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"space in host", "http://exa mple.com"},
		{"bad escape", "http://example.com/%zz"},
		{"unclosed ipv6 host", "http://[::1"},
		{"control character", "http://example.com/\x7f"},
		{"unresolved placeholder", "http://example.com/{{id}}"},
		{"brace", "http://x/{a}"},
		{"pipe", "http://example.com/a|b"},
		{"double quote", `http://example.com/a"b`},
		{"angle brackets", "http://example.com/<x>"},
		{"caret", "http://example.com/a^b"},
		{"backslash", `http://example.com/a\b`},
		{"backtick", "http://example.com/a`b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AppendParamsToURL(tt.url, []NameValuePair{Pair("a", "1")})
			require.Error(t, err)

			var malformed *MalformedURLError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, tt.url, malformed.URL)
			assert.ErrorIs(t, err, ErrMalformedURL)
			assert.NotEmpty(t, malformed.Err.Error())
		})
	}
}

func TestAppendParamsToURL_MalformedWithoutParams(t *testing.T) {
	_, err := AppendParamsToURL("http://example.com/%zz", nil)
	assert.ErrorIs(t, err, ErrMalformedURL)
}

func TestAppendParamsToURL_RejectsSameInputWithAndWithoutParams(t *testing.T) {
	_, withoutParams := AppendParamsToURL("http://x/{a}", nil)
	_, withParams := AppendParamsToURL("http://x/{a}", []NameValuePair{Pair("k", "v w")})

	assert.ErrorIs(t, withoutParams, ErrMalformedURL)
	assert.ErrorIs(t, withParams, ErrMalformedURL)
}

func TestBuildRequest_RejectsIllegalCharacters(t *testing.T) {
	for _, raw := range []string{"http://example.com/{{id}}", "http://example.com/a|b", "http://example.com/<x>"} {
		req, err := BuildRequest(NewRequestSpec(MethodGet, raw))
		assert.Nil(t, req, raw)
		assert.ErrorIs(t, err, ErrMalformedURL, raw)
	}
}

func TestEncodeForm(t *testing.T) {
	assert.Equal(t, "", EncodeForm(nil))
	assert.Equal(t, "a=1", EncodeForm([]NameValuePair{Pair("a", "1")}))
	assert.Equal(t, "a=1&b=", EncodeForm([]NameValuePair{Pair("a", "1"), Pair("b", "")}))
	assert.Equal(t, "a+b=c%3Dd", EncodeForm([]NameValuePair{Pair("a b", "c=d")}))
}

func TestParamsToString(t *testing.T) {
	assert.Equal(t, "a=b+c", ParamsToString([]NameValuePair{Pair("a", "b c")}))
	assert.Equal(t, "name=J%C3%BCrgen&x=1%2B1", ParamsToString([]NameValuePair{Pair("name", "Jürgen"), Pair("x", "1+1")}))
	assert.Equal(t, "", ParamsToString(nil))
}
