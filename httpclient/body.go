package httpclient

import (
	"encoding/json"
	"fmt"
)

// Body is a response body parsed leniently: JSON when it parses, raw text
// otherwise, nil when empty.
type Body struct {
	raw    []byte
	value  any
	isJSON bool
}

func parseBody(raw []byte) Body {
	if len(raw) == 0 {
		return Body{}
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Body{raw: raw, value: string(raw)}
	}
	return Body{raw: raw, value: v, isJSON: true}
}

// Raw returns the body bytes as received.
func (b Body) Raw() []byte {
	return b.raw
}

// Value returns the parsed JSON value, the raw text, or nil.
func (b Body) Value() any {
	return b.value
}

// IsJSON reports whether the body parsed as JSON.
func (b Body) IsJSON() bool {
	return b.isJSON
}

// Decode unmarshals a JSON body into v. Non-JSON and empty bodies leave v
// untouched.
func (b Body) Decode(v any) error {
	if !b.isJSON {
		return nil
	}
	if err := json.Unmarshal(b.raw, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
