package messaging

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Body is a provider response payload. Providers usually answer with JSON
// but proxies and outages produce HTML or plain text, so a Body holds either
// the raw JSON value or the raw text.
type Body struct {
	raw  json.RawMessage
	text string
}

// ParseBody keeps b as JSON when it is a valid JSON document and as text
// otherwise.
func ParseBody(b []byte) Body {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		return Body{raw: append(json.RawMessage(nil), trimmed...)}
	}
	return Body{text: string(b)}
}

// TextBody wraps a plain message.
func TextBody(s string) Body {
	return Body{text: s}
}

// IsJSON reports whether the body holds a JSON value.
func (b Body) IsJSON() bool {
	return b.raw != nil
}

// IsEmpty reports whether the payload carries nothing useful: empty text, or
// a JSON null, false, zero or empty string.
func (b Body) IsEmpty() bool {
	if !b.IsJSON() {
		return b.text == ""
	}
	var v any
	if err := json.Unmarshal(b.raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == ""
	}
	return false
}

// Field returns the named member of a JSON object body. It reports false
// when the body is not an object, the member is missing or it is empty.
func (b Body) Field(name string) (Body, bool) {
	if !b.IsJSON() {
		return Body{}, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b.raw, &obj); err != nil {
		return Body{}, false
	}
	member, ok := obj[name]
	if !ok {
		return Body{}, false
	}
	sub := Body{raw: member}
	if sub.IsEmpty() {
		return Body{}, false
	}
	return sub, true
}

// Decode unmarshals a JSON body into v.
func (b Body) Decode(v any) error {
	if !b.IsJSON() {
		return errors.New("messaging: body is not json")
	}
	return json.Unmarshal(b.raw, v)
}

// String returns the JSON text or the raw text.
func (b Body) String() string {
	if b.IsJSON() {
		return string(b.raw)
	}
	return b.text
}

// MarshalJSON emits JSON bodies verbatim and text bodies as JSON strings.
func (b Body) MarshalJSON() ([]byte, error) {
	if b.IsJSON() {
		return b.raw, nil
	}
	return json.Marshal(b.text)
}

// UnmarshalJSON is the inverse of MarshalJSON: a JSON string becomes a text
// body, any other value is kept as JSON.
func (b *Body) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*b = TextBody(s)
		return nil
	}
	if !json.Valid(data) {
		return errors.New("messaging: invalid json body")
	}
	*b = Body{raw: append(json.RawMessage(nil), data...)}
	return nil
}
