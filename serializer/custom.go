package serializer

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"time"

	"xmlrpc/parser"
	"xmlrpc/value"
)

// Built-in custom serializers for the XML flavor. Each writes the
// content inside the <value> wrapper the owning serializer has already
// opened, and recurses through the owner for nested values.

// Int64Serializer encodes int64 values. With the Apache extension the
// value goes out as a namespaced <i8>; without it the value truncates
// to 32 bits and goes out as <i4>, which is what legacy clients expect.
type Int64Serializer struct {
	UseApacheExtension bool
}

func (s *Int64Serializer) SupportedType() reflect.Type {
	return reflect.TypeOf(int64(0))
}

func (s *Int64Serializer) Supports(v any) bool {
	_, ok := v.(int64)
	return ok
}

func (s *Int64Serializer) Serialize(v any, w io.Writer, owner Serializer) error {
	n := v.(int64)
	if s.UseApacheExtension {
		_, err := fmt.Fprintf(w, "<i8 xmlns=\"%s\">%d</i8>", parser.ExtensionsNamespace, n)
		return err
	}
	_, err := fmt.Fprintf(w, "<i4>%d</i4>", int32(n))
	return err
}

// Int64SliceSerializer encodes []int64, element treatment as in
// Int64Serializer.
type Int64SliceSerializer struct {
	UseApacheExtension bool
}

func (s *Int64SliceSerializer) SupportedType() reflect.Type {
	return reflect.TypeOf([]int64(nil))
}

func (s *Int64SliceSerializer) Supports(v any) bool {
	_, ok := v.([]int64)
	return ok
}

func (s *Int64SliceSerializer) Serialize(v any, w io.Writer, owner Serializer) error {
	if _, err := io.WriteString(w, "<array><data>"); err != nil {
		return err
	}
	for _, n := range v.([]int64) {
		var err error
		if s.UseApacheExtension {
			_, err = fmt.Fprintf(w, "<value><i8 xmlns=\"%s\">%d</i8></value>", parser.ExtensionsNamespace, n)
		} else {
			_, err = fmt.Fprintf(w, "<value><i4>%d</i4></value>", int32(n))
		}
		if err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</data></array>")
	return err
}

// ArraySerializer encodes *value.Array as <array><data>.
type ArraySerializer struct{}

func (s *ArraySerializer) SupportedType() reflect.Type {
	return reflect.TypeOf((*value.Array)(nil))
}

func (s *ArraySerializer) Supports(v any) bool {
	_, ok := v.(*value.Array)
	return ok
}

func (s *ArraySerializer) Serialize(v any, w io.Writer, owner Serializer) error {
	if _, err := io.WriteString(w, "<array><data>"); err != nil {
		return err
	}
	for _, item := range v.(*value.Array).Items() {
		if err := owner.Serialize(item, w); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</data></array>")
	return err
}

// StructSerializer encodes *value.Struct as <struct> members. Member
// order is sorted for deterministic output; XML-RPC struct order is
// insignificant.
type StructSerializer struct{}

func (s *StructSerializer) SupportedType() reflect.Type {
	return reflect.TypeOf((*value.Struct)(nil))
}

func (s *StructSerializer) Supports(v any) bool {
	_, ok := v.(*value.Struct)
	return ok
}

func (s *StructSerializer) Serialize(v any, w io.Writer, owner Serializer) error {
	return writeXMLMembers(v.(*value.Struct).Members(), w, owner)
}

// MapSerializer encodes map[string]any as <struct> members.
type MapSerializer struct{}

func (s *MapSerializer) SupportedType() reflect.Type {
	return reflect.TypeOf(map[string]any(nil))
}

func (s *MapSerializer) Supports(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func (s *MapSerializer) Serialize(v any, w io.Writer, owner Serializer) error {
	return writeXMLMembers(v.(map[string]any), w, owner)
}

func writeXMLMembers(members map[string]any, w io.Writer, owner Serializer) error {
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)

	if _, err := io.WriteString(w, "<struct>"); err != nil {
		return err
	}
	for _, name := range names {
		if _, err := io.WriteString(w, "<member><name>"); err != nil {
			return err
		}
		if err := writeEscaped(w, name); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</name>"); err != nil {
			return err
		}
		if err := owner.Serialize(members[name], w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</member>"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</struct>")
	return err
}

// SliceSerializer encodes any remaining slice or array type as
// <array><data>, recursing per element. []byte and []int64 never reach
// it: the former is a built-in scalar, the latter is registered with a
// more specific supported type.
type SliceSerializer struct{}

func (s *SliceSerializer) SupportedType() reflect.Type {
	return nil // most general: ordered by the empty interface type
}

func (s *SliceSerializer) Supports(v any) bool {
	k := reflect.ValueOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func (s *SliceSerializer) Serialize(v any, w io.Writer, owner Serializer) error {
	if _, err := io.WriteString(w, "<array><data>"); err != nil {
		return err
	}
	rv := reflect.ValueOf(v)
	for i := 0; i < rv.Len(); i++ {
		if err := owner.Serialize(rv.Index(i).Interface(), w); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</data></array>")
	return err
}

// IntrospectingSerializer encodes an arbitrary Go struct (or pointer to
// one) as an XML-RPC struct of its exported fields. Last resort: it is
// registered with the most general ordering key, so any specific entry
// wins over it.
type IntrospectingSerializer struct{}

func (s *IntrospectingSerializer) SupportedType() reflect.Type {
	return nil
}

func (s *IntrospectingSerializer) Supports(v any) bool {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return false
	}
	// time.Time is a built-in scalar, not a member bag.
	_, isTime := rv.Interface().(time.Time)
	return !isTime
}

func (s *IntrospectingSerializer) Serialize(v any, w io.Writer, owner Serializer) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	rt := rv.Type()

	if _, err := io.WriteString(w, "<struct>"); err != nil {
		return err
	}
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		if _, err := io.WriteString(w, "<member><name>"); err != nil {
			return err
		}
		if err := writeEscaped(w, field.Name); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</name>"); err != nil {
			return err
		}
		if err := owner.Serialize(rv.Field(i).Interface(), w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</member>"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</struct>")
	return err
}
