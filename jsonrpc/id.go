package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID identifies the request a response answers. The zero ID encodes as null,
// which answers lines whose id could not be read.
type ID struct {
	value any
}

// NewID creates an ID from a string or number
func NewID(v any) (ID, error) {
	switch id := v.(type) {
	case ID:
		return id, nil
	case string, int, int32, int64, float32, float64:
		return ID{value: id}, nil
	case nil:
		return ID{}, fmt.Errorf("id cannot be null")
	default:
		return ID{}, fmt.Errorf("id must be string or number, got %T", v)
	}
}

// Value returns the string or number held by id, or nil
func (id ID) Value() any {
	return id.value
}

// IsNil reports whether id encodes as null
func (id ID) IsNil() bool {
	return id.value == nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// UnmarshalJSON accepts a string, a number or null.
// Integral numbers decode to int, others to float64.
func (id *ID) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		id.value = nil
	case string:
		id.value = v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			id.value = int(n)
			return nil
		}
		f, err := v.Float64()
		if err != nil {
			return fmt.Errorf("invalid numeric id %s: %w", v, err)
		}
		id.value = f
	default:
		return fmt.Errorf("id must be string or number, got %T", raw)
	}
	return nil
}
