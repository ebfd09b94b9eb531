package value

import (
	"bytes"
	"io"
	"time"

	"github.com/cockroachdb/errors"

	"xmlrpc/faults"
)

// Struct is a mapping from member name to value. Member names are always
// strings and insertion order is irrelevant, per the XML-RPC grammar.
type Struct struct {
	members map[string]any
}

// NewStruct creates an empty struct.
func NewStruct() *Struct {
	return &Struct{members: make(map[string]any)}
}

// Put binds a member name to a value, replacing any previous binding.
func (s *Struct) Put(name string, v any) {
	s.members[name] = v
}

// Has reports whether the member exists.
func (s *Struct) Has(name string) bool {
	_, ok := s.members[name]
	return ok
}

// Len returns the number of members.
func (s *Struct) Len() int {
	return len(s.members)
}

// Get returns the raw member value.
func (s *Struct) Get(name string) (any, error) {
	v, ok := s.members[name]
	if !ok {
		return nil, errors.Wrapf(faults.ErrTypeMismatch, "no member %q", name)
	}
	return v, nil
}

// Members returns the backing map. Callers must not modify it.
func (s *Struct) Members() map[string]any {
	return s.members
}

func (s *Struct) GetString(name string) (string, error) {
	v, err := s.Get(name)
	if err != nil {
		return "", err
	}
	str, ok := v.(string)
	if !ok {
		return "", typeMismatch("string", v)
	}
	return str, nil
}

func (s *Struct) GetInteger(name string) (int, error) {
	v, err := s.Get(name)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int)
	if !ok {
		return 0, typeMismatch("i4", v)
	}
	return n, nil
}

func (s *Struct) GetInt64(name string) (int64, error) {
	v, err := s.Get(name)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int64)
	if !ok {
		return 0, typeMismatch("i8", v)
	}
	return n, nil
}

func (s *Struct) GetDouble(name string) (float64, error) {
	v, err := s.Get(name)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, typeMismatch("double", v)
	}
	return f, nil
}

func (s *Struct) GetBoolean(name string) (bool, error) {
	v, err := s.Get(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, typeMismatch("boolean", v)
	}
	return b, nil
}

func (s *Struct) GetDate(name string) (time.Time, error) {
	v, err := s.Get(name)
	if err != nil {
		return time.Time{}, err
	}
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, typeMismatch("dateTime.iso8601", v)
	}
	return t, nil
}

// GetTimestamp returns a date member as unix seconds. An int64 member is
// accepted as-is.
func (s *Struct) GetTimestamp(name string) (int64, error) {
	v, err := s.Get(name)
	if err != nil {
		return 0, err
	}
	return asTimestamp(v)
}

func (s *Struct) GetBinary(name string) ([]byte, error) {
	v, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, typeMismatch("base64", v)
	}
	return b, nil
}

// GetBinaryReader returns a stream view over a base64 member.
func (s *Struct) GetBinaryReader(name string) (io.Reader, error) {
	b, err := s.GetBinary(name)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

func (s *Struct) GetArray(name string) (*Array, error) {
	v, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	a, ok := v.(*Array)
	if !ok {
		return nil, typeMismatch("array", v)
	}
	return a, nil
}

func (s *Struct) GetStruct(name string) (*Struct, error) {
	v, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	nested, ok := v.(*Struct)
	if !ok {
		return nil, typeMismatch("struct", v)
	}
	return nested, nil
}
