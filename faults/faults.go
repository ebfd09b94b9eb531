// Package faults defines the error taxonomy shared by the parser, the
// serializer, and the dispatcher.
//
// A Fault is the one error kind that carries a protocol-level fault code
// back to the client. Every other error collapses to code -1 when it is
// encoded into a fault response, which is what legacy XML-RPC clients
// expect as the generic failure code.
package faults

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for the non-fault failure classes. Callers wrap these
// with context via errors.Wrapf and test with errors.Is.
var (
	// ErrMalformed marks structural or literal parse failures in an
	// inbound message. The dispatcher never encodes these into a
	// response; they surface to its caller.
	ErrMalformed = errors.New("malformed message")

	// ErrTypeMismatch marks a typed accessor called on a value of a
	// different runtime type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnsupportedType marks a serialization attempt on a runtime
	// type with no built-in encoding and no matching custom serializer.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNoSuchMethod marks an invocation for which no registered
	// method signature matched the argument types.
	ErrNoSuchMethod = errors.New("no method matching arguments")

	// ErrNotPublished marks an invocation of a method outside the
	// handler's entry point allow-list.
	ErrNotPublished = errors.New("method not published")
)

// Fault is a protocol-level error response: a numeric code and a message
// sent to the client in place of a normal return value. Handlers return
// a *Fault when they want control over the code seen by the client.
type Fault struct {
	Code    int
	Message string
}

// New creates a Fault with the given code and message.
func New(code int, message string) *Fault {
	return &Fault{Code: code, Message: message}
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fault %d: %s", f.Code, f.Message)
}

// CodeOf extracts the fault code to encode for err. Only a *Fault in the
// chain carries a custom code; everything else is the generic -1.
func CodeOf(err error) int {
	var f *Fault
	if errors.As(err, &f) {
		return f.Code
	}
	return -1
}
