// AngelaMos | 2026
// optional.go

package core

import (
	"bytes"
	"encoding/json"
)

// Optional is a tri-state JSON field: absent, explicit null, or a value.
// Absent fields are never passed to UnmarshalJSON, so Set stays false.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Value = zero
		o.Null = true
		return nil
	}

	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// HasValue reports whether a non-null value was supplied.
func (o Optional[T]) HasValue() bool {
	return o.Set && !o.Null
}

// Ptr returns nil for an absent or null field.
func (o Optional[T]) Ptr() *T {
	if !o.HasValue() {
		return nil
	}
	v := o.Value
	return &v
}
