package alert

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// ErrEmptyPayload is returned for bodies holding no data: null, {}, [], "", 0 or false.
var ErrEmptyPayload = errors.New("no JSON data received")

// Payload is the JSON object sent by the alerting platform. It has no fixed
// schema; absent keys and keys holding null are treated alike.
type Payload map[string]any

// DecodePayload parses a request body. A JSON object becomes the payload, any
// other non-empty document yields an empty payload.
func DecodePayload(body []byte) (Payload, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyPayload
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "could not decode alert payload")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("could not decode alert payload: trailing data after JSON document")
	}

	switch v := doc.(type) {
	case nil:
		return nil, ErrEmptyPayload
	case map[string]any:
		if len(v) == 0 {
			return nil, ErrEmptyPayload
		}
		return Payload(v), nil
	case []any:
		if len(v) == 0 {
			return nil, ErrEmptyPayload
		}
	case string:
		if v == "" {
			return nil, ErrEmptyPayload
		}
	case bool:
		if !v {
			return nil, ErrEmptyPayload
		}
	case json.Number:
		if f, err := v.Float64(); err == nil && f == 0 {
			return nil, ErrEmptyPayload
		}
	}
	return Payload{}, nil
}

// Lookup returns the raw value stored under key.
func (p Payload) Lookup(key string) (any, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (p Payload) Has(key string) bool {
	_, ok := p.Lookup(key)
	return ok
}

// Text returns the value under key in its textual form.
func (p Payload) Text(key string) (string, bool) {
	v, ok := p.Lookup(key)
	if !ok {
		return "", false
	}
	return toText(v), true
}

// TextOr is Text with a fallback for absent keys.
func (p Payload) TextOr(key, fallback string) string {
	if s, ok := p.Text(key); ok {
		return s
	}
	return fallback
}

func toText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case map[string]any, []any:
		return compactJSON(t)
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return compactJSON(v)
}

func compactJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return cast.ToString(v)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
