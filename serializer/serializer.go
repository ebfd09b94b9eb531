// Package serializer converts value trees into response envelopes.
//
// Two wire flavors share one contract: the XML-RPC flavor and a
// JSON-like flavor meant for script evaluation by a trusting client.
// Scalar types are encoded directly; any other runtime type goes
// through an ordered registry of custom serializers where the first
// match wins.
package serializer

import (
	"io"
	"reflect"
	"sync"
)

// Serializer is the response encoding contract. A response is written
// as EnvelopeHeader, Serialize (unless the value is the no-value
// sentinel), EnvelopeFooter; faults replace all three with WriteError.
type Serializer interface {
	WriteEnvelopeHeader(v any, w io.Writer) error
	Serialize(v any, w io.Writer) error
	WriteEnvelopeFooter(v any, w io.Writer) error
	WriteError(code int, message string, w io.Writer) error
}

// CustomSerializer encodes one family of runtime types that the
// built-in scalar cases do not cover.
//
// SupportedType is the registration ordering key: entries supporting a
// subtype are kept in front of entries supporting a supertype.
// Kind-based serializers (e.g. any slice) report the empty interface
// type, the most general key. Supports is the match predicate consulted
// at serialization time. Serialize may call back into owner to encode
// nested values.
type CustomSerializer interface {
	SupportedType() reflect.Type
	Supports(v any) bool
	Serialize(v any, w io.Writer, owner Serializer) error
}

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// Registry is an ordered list of custom serializers. Iteration order is
// the sole determinant of match priority.
type Registry struct {
	mu      sync.Mutex
	entries []CustomSerializer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register inserts cs immediately before the first existing entry whose
// supported type is a supertype of (or equal to) cs's supported type,
// and appends otherwise. More specific types are therefore always tried
// before more general ones regardless of registration order: a []int64
// entry always precedes a generic slice entry.
func (r *Registry) Register(cs CustomSerializer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := len(r.entries)
	newType := supportedType(cs)
	for i, existing := range r.entries {
		if newType.AssignableTo(supportedType(existing)) {
			at = i
			break
		}
	}

	// Copy-on-write so snapshots held by in-flight serializations are
	// unaffected.
	updated := make([]CustomSerializer, 0, len(r.entries)+1)
	updated = append(updated, r.entries[:at]...)
	updated = append(updated, cs)
	updated = append(updated, r.entries[at:]...)
	r.entries = updated
}

// Unregister removes cs by identity. No-op if absent.
func (r *Registry) Unregister(cs CustomSerializer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.entries {
		if existing == cs {
			updated := make([]CustomSerializer, 0, len(r.entries)-1)
			updated = append(updated, r.entries[:i]...)
			updated = append(updated, r.entries[i+1:]...)
			r.entries = updated
			return
		}
	}
}

// Find returns the first entry whose predicate accepts v, or nil. It
// works on a snapshot: registrations during an in-flight serialization
// affect only subsequent ones.
func (r *Registry) Find(v any) CustomSerializer {
	r.mu.Lock()
	entries := r.entries
	r.mu.Unlock()

	for _, cs := range entries {
		if cs.Supports(v) {
			return cs
		}
	}
	return nil
}

func supportedType(cs CustomSerializer) reflect.Type {
	if t := cs.SupportedType(); t != nil {
		return t
	}
	return anyType
}
