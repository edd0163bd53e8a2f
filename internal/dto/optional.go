package dto

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrNullField is returned when a partial-update field is sent as JSON null.
var ErrNullField = errors.New("field may be omitted but not null")

// Optional marks whether a field was present in a partial-update request.
// A missing key leaves Set false; an explicit null is rejected.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Get returns the value and whether it was present.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// OrElse returns the value if present, def otherwise.
func (o Optional[T]) OrElse(def T) T {
	if o.Set {
		return o.Value
	}
	return def
}

// ApplyTo overwrites *dst when the value is present and reports whether it did.
func (o Optional[T]) ApplyTo(dst *T) bool {
	if !o.Set {
		return false
	}
	*dst = o.Value
	return true
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return ErrNullField
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = v
	o.Set = true
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
