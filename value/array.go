package value

import (
	"bytes"
	"io"
	"time"

	"github.com/cockroachdb/errors"

	"xmlrpc/faults"
)

// Array is an ordered sequence of values. Elements have no names.
//
// The typed accessors assume the caller knows the expected element type;
// a mismatch returns an error wrapping faults.ErrTypeMismatch rather
// than falling back to a zero value.
type Array struct {
	items []any
}

// NewArray creates an empty array.
func NewArray() *Array {
	return &Array{}
}

// Of builds an array from the given elements, in order.
func Of(items ...any) *Array {
	return &Array{items: items}
}

// Add appends a value. Only the parser (or code assembling a value tree
// by hand) calls this; a fully parsed array is read-only by convention.
func (a *Array) Add(v any) {
	a.items = append(a.items, v)
}

// Len returns the number of elements.
func (a *Array) Len() int {
	return len(a.items)
}

// Get returns the raw element at index i.
func (a *Array) Get(i int) (any, error) {
	if i < 0 || i >= len(a.items) {
		return nil, errors.Wrapf(faults.ErrTypeMismatch, "index %d out of range (len %d)", i, len(a.items))
	}
	return a.items[i], nil
}

// Items returns the backing slice. Callers must not modify it.
func (a *Array) Items() []any {
	return a.items
}

func (a *Array) GetString(i int) (string, error) {
	v, err := a.Get(i)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", typeMismatch("string", v)
	}
	return s, nil
}

func (a *Array) GetInteger(i int) (int, error) {
	v, err := a.Get(i)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int)
	if !ok {
		return 0, typeMismatch("i4", v)
	}
	return n, nil
}

func (a *Array) GetInt64(i int) (int64, error) {
	v, err := a.Get(i)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int64)
	if !ok {
		return 0, typeMismatch("i8", v)
	}
	return n, nil
}

func (a *Array) GetDouble(i int) (float64, error) {
	v, err := a.Get(i)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, typeMismatch("double", v)
	}
	return f, nil
}

func (a *Array) GetBoolean(i int) (bool, error) {
	v, err := a.Get(i)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, typeMismatch("boolean", v)
	}
	return b, nil
}

func (a *Array) GetDate(i int) (time.Time, error) {
	v, err := a.Get(i)
	if err != nil {
		return time.Time{}, err
	}
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, typeMismatch("dateTime.iso8601", v)
	}
	return t, nil
}

func (a *Array) GetBinary(i int) ([]byte, error) {
	v, err := a.Get(i)
	if err != nil {
		return nil, err
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, typeMismatch("base64", v)
	}
	return b, nil
}

// GetBinaryReader returns a stream view over a base64 element.
func (a *Array) GetBinaryReader(i int) (io.Reader, error) {
	b, err := a.GetBinary(i)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

func (a *Array) GetArray(i int) (*Array, error) {
	v, err := a.Get(i)
	if err != nil {
		return nil, err
	}
	nested, ok := v.(*Array)
	if !ok {
		return nil, typeMismatch("array", v)
	}
	return nested, nil
}

func (a *Array) GetStruct(i int) (*Struct, error) {
	v, err := a.Get(i)
	if err != nil {
		return nil, err
	}
	s, ok := v.(*Struct)
	if !ok {
		return nil, typeMismatch("struct", v)
	}
	return s, nil
}
