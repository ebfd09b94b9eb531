// Package interceptor defines the invocation-handler contract and the
// interceptor chain run around every dispatched call, plus a couple of
// ready-made interceptors (logging, rate limiting).
//
// For a call with interceptors registered:
//
//	Before(inv) on every interceptor, registration order
//	  → handler.Invoke
//	    → After(inv, result) on every interceptor, same order
//	      → dispatcher writes the surviving result (unless handled)
//
// Any Before returning false cancels the call; an After returning the
// handled result signals that the interceptor wrote the response itself
// and short-circuits the rest of the chain.
package interceptor

import "io"

// InvocationHandler is an application-supplied target: it receives the
// method name and the parsed positional arguments, and returns the
// result value (or the no-value marker) or an error.
type InvocationHandler interface {
	Invoke(method string, args []any) (any, error)
}

// Invocation carries the context of one dispatched call through the
// interceptor chain. It is created per request, only when at least one
// interceptor is registered, and discarded when the request completes.
type Invocation struct {
	// CallID identifies the call for tracing. Produced by the server's
	// injected id source.
	CallID string

	// HandlerName and MethodName are the two parts of the resolved
	// method name.
	HandlerName string
	MethodName  string

	// Handler is the resolved invocation target.
	Handler InvocationHandler

	// Arguments are the parsed positional arguments.
	Arguments []any

	// Output is the response sink. An After interceptor that takes over
	// the response writes here and returns Handled.
	Output io.Writer
}

// resultKind is the three-way outcome of the After chain.
type resultKind int

const (
	kindValue resultKind = iota
	kindVoid
	kindHandled
)

// Result is the explicit outcome flowing through the After chain. It
// distinguishes "the handler legitimately returned nothing" (Void, the
// dispatcher still writes the void envelope) from "an interceptor took
// over and the response is already written" (Handled).
type Result struct {
	kind resultKind
	val  any
}

// ValueOf wraps a return value.
func ValueOf(v any) Result {
	return Result{kind: kindValue, val: v}
}

// Void is the no-value outcome; the dispatcher writes the void
// envelope.
func Void() Result {
	return Result{kind: kindVoid}
}

// Handled signals the response has already been written; the dispatcher
// must not write anything further.
func Handled() Result {
	return Result{kind: kindHandled}
}

// IsVoid reports whether the result carries no value.
func (r Result) IsVoid() bool { return r.kind == kindVoid }

// IsHandled reports whether an interceptor took over the response.
func (r Result) IsHandled() bool { return r.kind == kindHandled }

// Value returns the wrapped return value, nil for void or handled
// results.
func (r Result) Value() any { return r.val }

// Interceptor observes and gates dispatched calls. All three callbacks
// run in registration order. When a Before cancels the call,
// interceptors not yet reached see no further callbacks for that call.
type Interceptor interface {
	// Before runs ahead of the handler. Returning false cancels the
	// call: the handler and the remaining interceptors are not invoked
	// and the client receives a cancellation fault.
	Before(inv *Invocation) bool

	// After runs behind the handler and may replace the result.
	// Returning Handled short-circuits the remaining chain.
	After(inv *Invocation, result Result) Result

	// OnException is a best-effort notification of an error escaping
	// the handler (or a preceding After step), before the fault is
	// written.
	OnException(inv *Invocation, err error)
}
