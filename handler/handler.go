// Package handler implements invocation targets for the dispatch layer.
//
// The core is a dispatch table: an ordered registry mapping a method
// name plus a list of argument-type predicates to a callable. Entries
// are tried in registration order and the first compatible match wins,
// so registrants listing overloads must order them from most to least
// specific. Wrap builds such a table from an arbitrary Go object via
// reflection, for publishing objects that were not written against this
// package.
package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"xmlrpc/faults"
	"xmlrpc/value"
)

// Param is an argument-type predicate: it reports whether the entry
// accepts the given argument in its position.
type Param func(arg any) bool

// Predefined predicates for the closed set of parsed value types. Each
// requires the exact runtime type, mirroring the no-widening rule for
// primitive parameters: an int parameter never accepts an int64.
var (
	Int    Param = func(arg any) bool { _, ok := arg.(int); return ok }
	Int64  Param = func(arg any) bool { _, ok := arg.(int64); return ok }
	Double Param = func(arg any) bool { _, ok := arg.(float64); return ok }
	Bool   Param = func(arg any) bool { _, ok := arg.(bool); return ok }
	String Param = func(arg any) bool { _, ok := arg.(string); return ok }
	Date   Param = func(arg any) bool { _, ok := arg.(time.Time); return ok }
	Binary Param = func(arg any) bool { _, ok := arg.([]byte); return ok }
	Array  Param = func(arg any) bool { _, ok := arg.(*value.Array); return ok }
	Struct Param = func(arg any) bool { _, ok := arg.(*value.Struct); return ok }
	Any    Param = func(arg any) bool { return true }
)

// Func is the callable bound to a table entry. The arguments have
// already passed the entry's predicates.
type Func func(args []any) (any, error)

type entry struct {
	method string
	params []Param
	fn     Func
}

// Table is the capability dispatch table. The zero value is not usable;
// create one with NewTable or Wrap.
type Table struct {
	entries     []entry
	entryPoints []string
}

// NewTable creates an empty dispatch table.
func NewTable() *Table {
	return &Table{}
}

// Register adds a callable for the given method name and parameter
// predicates. The same method name may be registered repeatedly with
// different predicate lists; earlier registrations are tried first.
func (t *Table) Register(method string, params []Param, fn Func) {
	t.entries = append(t.entries, entry{method: method, params: params, fn: fn})
}

// SetEntryPoints restricts invocation to the named methods. A nil list
// means every registered method is available. Note that the allow-list
// works on names only: all entries registered under a published name
// remain reachable.
func (t *Table) SetEntryPoints(names []string) {
	t.entryPoints = names
}

// Invoke locates the first entry matching the method name and argument
// types and calls it.
func (t *Table) Invoke(method string, args []any) (any, error) {
	if t.entryPoints != nil && !t.published(method) {
		return nil, errors.Wrapf(faults.ErrNotPublished, "%s", method)
	}

outer:
	for _, e := range t.entries {
		if e.method != method || len(e.params) != len(args) {
			continue
		}
		for i, p := range e.params {
			if !p(args[i]) {
				continue outer
			}
		}
		return e.fn(args)
	}

	// Include the runtime types of all arguments in the error to make
	// mismatches easy to debug.
	types := make([]string, len(args))
	for i, arg := range args {
		types[i] = fmt.Sprintf("%T", arg)
	}
	return nil, errors.Wrapf(faults.ErrNoSuchMethod, "%s(%s)", method, strings.Join(types, " "))
}

func (t *Table) published(method string) bool {
	for _, name := range t.entryPoints {
		if name == method {
			return true
		}
	}
	return false
}
