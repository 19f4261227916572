package alert

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload_Object(t *testing.T) {
	p, err := DecodePayload([]byte(`{"message":"hello","price":1e3}`))
	require.NoError(t, err)

	assert.Equal(t, "hello", p.TextOr("message", "x"))
	price, ok := p.Lookup("price")
	require.True(t, ok)
	assert.Equal(t, json.Number("1e3"), price)
}

func TestDecodePayload_Empty(t *testing.T) {
	for _, body := range []string{"", "   ", "null", "{}", "[]", `""`, "0", "false"} {
		_, err := DecodePayload([]byte(body))
		assert.True(t, errors.Is(err, ErrEmptyPayload), "body %q: %v", body, err)
	}
}

func TestDecodePayload_NonObjectYieldsEmptyPayload(t *testing.T) {
	for _, body := range []string{`[1,2]`, `"text"`, `12`, `true`} {
		p, err := DecodePayload([]byte(body))
		require.NoError(t, err, "body %q", body)
		assert.Empty(t, p)
	}
}

func TestDecodePayload_Invalid(t *testing.T) {
	for _, body := range []string{`{"message":`, `not json`, `{} {}`} {
		_, err := DecodePayload([]byte(body))
		require.Error(t, err, "body %q", body)
		assert.False(t, errors.Is(err, ErrEmptyPayload))
	}
}

func TestPayload_Accessors(t *testing.T) {
	p := Payload{"a": "x", "b": nil, "c": 3}

	assert.True(t, p.Has("a"))
	assert.False(t, p.Has("b"))
	assert.False(t, p.Has("missing"))

	s, ok := p.Text("c")
	assert.True(t, ok)
	assert.Equal(t, "3", s)

	assert.Equal(t, "fallback", p.TextOr("b", "fallback"))

	var nilPayload Payload
	assert.False(t, nilPayload.Has("a"))
}

func TestToText_DoesNotEscapeHTML(t *testing.T) {
	assert.Equal(t, `{"tag":"<b>"}`, toText(map[string]any{"tag": "<b>"}))
}
