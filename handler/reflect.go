package handler

import (
	"reflect"

	"github.com/cockroachdb/errors"

	"xmlrpc/value"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Wrap builds a dispatch table from the exported methods of target,
// for publishing an object that was not written against this package.
// Method names are exposed with a lower-cased first letter ("Add"
// becomes "add", the usual XML-RPC spelling).
//
// Supported method shapes:
//
//	func (T) M(args...) (R, error)
//	func (T) M(args...) R
//	func (T) M(args...) error
//	func (T) M(args...)
//
// A method without a result value returns the no-value marker, which
// encodes as the void response. Concrete parameter types require the
// exact argument type (no numeric widening); interface parameter types
// accept any assignable argument.
func Wrap(target any) (*Table, error) {
	rv := reflect.ValueOf(target)
	if !rv.IsValid() {
		return nil, errors.New("handler: nil target")
	}

	t := NewTable()
	rt := rv.Type()
	for i := 0; i < rt.NumMethod(); i++ {
		m := rt.Method(i)
		if !m.IsExported() {
			continue
		}
		mt := m.Func.Type()

		// Skip the receiver in position 0.
		params := make([]Param, 0, mt.NumIn()-1)
		for j := 1; j < mt.NumIn(); j++ {
			params = append(params, paramFor(mt.In(j)))
		}

		fn := rv.Method(i)
		t.Register(exportedName(m.Name), params, func(args []any) (any, error) {
			in := make([]reflect.Value, len(args))
			for k, arg := range args {
				in[k] = reflect.ValueOf(arg)
			}
			return resultOf(fn.Call(in))
		})
	}
	return t, nil
}

// WrapWithEntryPoints wraps target and restricts invocation to the
// named methods.
func WrapWithEntryPoints(target any, entryPoints []string) (*Table, error) {
	t, err := Wrap(target)
	if err != nil {
		return nil, err
	}
	t.SetEntryPoints(entryPoints)
	return t, nil
}

// paramFor derives the predicate for a declared parameter type.
func paramFor(pt reflect.Type) Param {
	if pt.Kind() == reflect.Interface {
		if pt.NumMethod() == 0 {
			return Any
		}
		return func(arg any) bool {
			return arg != nil && reflect.TypeOf(arg).AssignableTo(pt)
		}
	}
	// Exact runtime type for everything else: no widening between
	// numeric kinds, no struct conversions.
	return func(arg any) bool {
		return reflect.TypeOf(arg) == pt
	}
}

// resultOf maps a reflective call's results onto the (value, error)
// shape the dispatch layer expects.
func resultOf(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return value.NoValue, nil
	case 1:
		if out[0].Type().Implements(errorType) {
			if out[0].IsNil() {
				return value.NoValue, nil
			}
			return nil, out[0].Interface().(error)
		}
		return out[0].Interface(), nil
	default:
		var err error
		if last := out[len(out)-1]; last.Type().Implements(errorType) && !last.IsNil() {
			err = last.Interface().(error)
		}
		if err != nil {
			return nil, err
		}
		return out[0].Interface(), nil
	}
}

// exportedName lowers the first letter of a Go method name to the
// conventional XML-RPC spelling.
func exportedName(name string) string {
	if name == "" {
		return name
	}
	b := []byte(name)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
