package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybermatrixco/strand/internal/script"
)

func TestPrintValue_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printValue(&buf, "text", script.Int(42)))
	assert.Equal(t, "42\n", buf.String())

	buf.Reset()
	require.NoError(t, printValue(&buf, "text", script.Str("hi")))
	assert.Equal(t, "hi\n", buf.String())
}

func TestPrintValue_JSON(t *testing.T) {
	var buf bytes.Buffer
	obj := script.Object{"n": script.Int(1), "s": script.Str("x")}
	require.NoError(t, printValue(&buf, "json", obj))
	assert.JSONEq(t, `{"n": 1, "s": "x"}`, buf.String())
}

func TestValueToJSON(t *testing.T) {
	assert.Nil(t, valueToJSON(script.Null{}))
	assert.Equal(t, true, valueToJSON(script.Bool(true)))
	assert.Equal(t, int64(7), valueToJSON(script.Int(7)))
	assert.Equal(t, "s", valueToJSON(script.Str("s")))
	assert.Equal(t, []any{int64(1), "two"}, valueToJSON(script.List{script.Int(1), script.Str("two")}))
	assert.Equal(t, map[string]any{"k": nil}, valueToJSON(script.Object{"k": script.Null{}}))
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.False(t, isValidFormat("yaml"))
	assert.False(t, isValidFormat(""))
}
