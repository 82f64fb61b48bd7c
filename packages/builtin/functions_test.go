package builtin

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Call(t *testing.T) {
	r := NewRegistry()

	v, ok := r.Call("uuid()")
	require.True(t, ok)
	_, err := uuid.Parse(v.(string))
	assert.NoError(t, err)

	v, ok = r.Call(`base64("user:pass")`)
	require.True(t, ok)
	assert.Equal(t, "dXNlcjpwYXNz", v)

	v, ok = r.Call("basicAuth(user, pass)")
	require.True(t, ok)
	assert.Equal(t, "Basic dXNlcjpwYXNz", v)

	v, ok = r.Call("urlEncode('a b&c')")
	require.True(t, ok)
	assert.Equal(t, "a+b%26c", v)

	_, ok = r.Call("missing()")
	assert.False(t, ok)

	_, ok = r.Call("not a call")
	assert.False(t, ok)
}

func TestRegistry_Random(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 50; i++ {
		v, ok := r.Call("random(5, 7)")
		require.True(t, ok)
		assert.GreaterOrEqual(t, v.(int), 5)
		assert.LessOrEqual(t, v.(int), 7)
	}

	v, _ := r.Call("randomString(12)")
	assert.Len(t, v.(string), 12)
}

func TestRegistry_RandomBadArguments(t *testing.T) {
	r := NewRegistry()

	v, ok := r.Call("randomString(-1)")
	require.True(t, ok)
	assert.Equal(t, "", v)

	v, ok = r.Call("random(-9223372036854775808, 9223372036854775807)")
	require.True(t, ok)
	assert.IsType(t, 0, v)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register("upper", func(args []string) any { return "UP" })

	v, ok := r.Call("upper(x)")
	require.True(t, ok)
	assert.Equal(t, "UP", v)
	assert.Contains(t, r.Names(), "upper")
}

func TestParseArgs(t *testing.T) {
	assert.Equal(t, []string{"a", "b c", "d,e"}, parseArgs(`a, "b c", 'd,e'`))
	assert.Nil(t, parseArgs(""))
}
