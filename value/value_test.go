package value

import (
	"errors"
	"io"
	"testing"
	"time"

	"xmlrpc/faults"
)

func TestArrayAccessors(t *testing.T) {
	when := time.Date(2024, time.March, 7, 10, 30, 0, 0, time.UTC)
	a := Of("hello", 42, int64(1<<40), 3.14, true, when, []byte{1, 2, 3})

	if a.Len() != 7 {
		t.Fatalf("expect len 7, got %d", a.Len())
	}

	if s, err := a.GetString(0); err != nil || s != "hello" {
		t.Fatalf("GetString: got %q, %v", s, err)
	}
	if n, err := a.GetInteger(1); err != nil || n != 42 {
		t.Fatalf("GetInteger: got %d, %v", n, err)
	}
	if n, err := a.GetInt64(2); err != nil || n != 1<<40 {
		t.Fatalf("GetInt64: got %d, %v", n, err)
	}
	if d, err := a.GetDouble(3); err != nil || d != 3.14 {
		t.Fatalf("GetDouble: got %v, %v", d, err)
	}
	if b, err := a.GetBoolean(4); err != nil || !b {
		t.Fatalf("GetBoolean: got %v, %v", b, err)
	}
	if d, err := a.GetDate(5); err != nil || !d.Equal(when) {
		t.Fatalf("GetDate: got %v, %v", d, err)
	}
	if b, err := a.GetBinary(6); err != nil || len(b) != 3 {
		t.Fatalf("GetBinary: got %v, %v", b, err)
	}
}

func TestArrayTypeMismatch(t *testing.T) {
	a := Of("hello")

	_, err := a.GetInteger(0)
	if !errors.Is(err, faults.ErrTypeMismatch) {
		t.Fatalf("expect type mismatch, got %v", err)
	}

	// Out-of-range indexes fail the same way; no safe fallback.
	_, err = a.GetString(5)
	if !errors.Is(err, faults.ErrTypeMismatch) {
		t.Fatalf("expect error for out-of-range index, got %v", err)
	}
}

func TestStructAccessors(t *testing.T) {
	s := NewStruct()
	s.Put("name", "curly")
	s.Put("age", 30)
	nested := NewArray()
	nested.Add(1)
	s.Put("scores", nested)

	if !s.Has("name") || s.Has("missing") {
		t.Fatal("Has is wrong")
	}
	if name, err := s.GetString("name"); err != nil || name != "curly" {
		t.Fatalf("GetString: got %q, %v", name, err)
	}
	if age, err := s.GetInteger("age"); err != nil || age != 30 {
		t.Fatalf("GetInteger: got %d, %v", age, err)
	}
	if a, err := s.GetArray("scores"); err != nil || a.Len() != 1 {
		t.Fatalf("GetArray: got %v, %v", a, err)
	}

	_, err := s.GetString("missing")
	if !errors.Is(err, faults.ErrTypeMismatch) {
		t.Fatalf("expect error for missing member, got %v", err)
	}
}

func TestStructTimestamp(t *testing.T) {
	when := time.Date(2024, time.March, 7, 10, 30, 0, 0, time.UTC)
	s := NewStruct()
	s.Put("at", when)
	s.Put("raw", when.Unix())

	ts, err := s.GetTimestamp("at")
	if err != nil || ts != when.Unix() {
		t.Fatalf("GetTimestamp(date): got %d, %v", ts, err)
	}
	ts, err = s.GetTimestamp("raw")
	if err != nil || ts != when.Unix() {
		t.Fatalf("GetTimestamp(int64): got %d, %v", ts, err)
	}
}

func TestBinaryStreamView(t *testing.T) {
	s := NewStruct()
	s.Put("blob", []byte("stream me"))

	r, err := s.GetBinaryReader("blob")
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(r)
	if err != nil || string(data) != "stream me" {
		t.Fatalf("expect 'stream me', got %q, %v", data, err)
	}
}

func TestNoValue(t *testing.T) {
	if !IsNoValue(nil) {
		t.Fatal("nil should be no-value")
	}
	if !IsNoValue(NoValue) {
		t.Fatal("NoValue should be no-value")
	}
	if IsNoValue(0) || IsNoValue("") {
		t.Fatal("zero values are real values")
	}
}
