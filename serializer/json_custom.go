package serializer

import (
	"io"
	"reflect"
	"sort"
	"time"

	"xmlrpc/value"
)

// Built-in custom serializers for the JSON flavor. Containers emit
// JavaScript array and object literals, recursing through the owner for
// elements.

// JSONArraySerializer encodes *value.Array as [a,b,c].
type JSONArraySerializer struct{}

func (s *JSONArraySerializer) SupportedType() reflect.Type {
	return reflect.TypeOf((*value.Array)(nil))
}

func (s *JSONArraySerializer) Supports(v any) bool {
	_, ok := v.(*value.Array)
	return ok
}

func (s *JSONArraySerializer) Serialize(v any, w io.Writer, owner Serializer) error {
	return writeJSONList(v.(*value.Array).Items(), w, owner)
}

// JSONStructSerializer encodes *value.Struct as {'k':v}.
type JSONStructSerializer struct{}

func (s *JSONStructSerializer) SupportedType() reflect.Type {
	return reflect.TypeOf((*value.Struct)(nil))
}

func (s *JSONStructSerializer) Supports(v any) bool {
	_, ok := v.(*value.Struct)
	return ok
}

func (s *JSONStructSerializer) Serialize(v any, w io.Writer, owner Serializer) error {
	return writeJSONMembers(v.(*value.Struct).Members(), w, owner)
}

// JSONMapSerializer encodes map[string]any as {'k':v}.
type JSONMapSerializer struct{}

func (s *JSONMapSerializer) SupportedType() reflect.Type {
	return reflect.TypeOf(map[string]any(nil))
}

func (s *JSONMapSerializer) Supports(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func (s *JSONMapSerializer) Serialize(v any, w io.Writer, owner Serializer) error {
	return writeJSONMembers(v.(map[string]any), w, owner)
}

// JSONSliceSerializer encodes any remaining slice or array type as a
// list literal.
type JSONSliceSerializer struct{}

func (s *JSONSliceSerializer) SupportedType() reflect.Type {
	return nil
}

func (s *JSONSliceSerializer) Supports(v any) bool {
	k := reflect.ValueOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func (s *JSONSliceSerializer) Serialize(v any, w io.Writer, owner Serializer) error {
	rv := reflect.ValueOf(v)
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return writeJSONList(items, w, owner)
}

// JSONIntrospectingSerializer encodes an arbitrary Go struct as an
// object literal of its exported fields.
type JSONIntrospectingSerializer struct{}

func (s *JSONIntrospectingSerializer) SupportedType() reflect.Type {
	return nil
}

func (s *JSONIntrospectingSerializer) Supports(v any) bool {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return false
	}
	_, isTime := rv.Interface().(time.Time)
	return !isTime
}

func (s *JSONIntrospectingSerializer) Serialize(v any, w io.Writer, owner Serializer) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	rt := rv.Type()

	members := make(map[string]any)
	for i := 0; i < rt.NumField(); i++ {
		if field := rt.Field(i); field.IsExported() {
			members[field.Name] = rv.Field(i).Interface()
		}
	}
	return writeJSONMembers(members, w, owner)
}

func writeJSONList(items []any, w io.Writer, owner Serializer) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return err
	}
	for i, item := range items {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if err := owner.Serialize(item, w); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "]")
	return err
}

func writeJSONMembers(members map[string]any, w io.Writer, owner Serializer) error {
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)

	if _, err := io.WriteString(w, "{"); err != nil {
		return err
	}
	for i, name := range names {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "'"+name+"':"); err != nil {
			return err
		}
		if err := owner.Serialize(members[name], w); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "}")
	return err
}
