package server

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"xmlrpc/faults"
	"xmlrpc/interceptor"
	"xmlrpc/parser"
	"xmlrpc/value"
)

// Dispatcher performs one inbound call: parse, resolve, run the
// interceptor chain, invoke, and encode the result or fault. One
// instance serves exactly one call and is not safe for reuse or for
// concurrent use; transports create one per request.
type Dispatcher struct {
	server   *Server
	callerIP string
}

// NewDispatcher creates a dispatcher for one request. callerIP is kept
// for logging and access control and may be empty.
func NewDispatcher(s *Server, callerIP string) *Dispatcher {
	return &Dispatcher{server: s, callerIP: callerIP}
}

// CallerIP returns the address of the client being dispatched.
func (d *Dispatcher) CallerIP() string {
	return d.callerIP
}

// Dispatch parses the message on input and writes the response to
// output. A parse failure aborts before any response is attempted and
// is returned to the caller; every other failure is encoded into the
// response as a fault.
func (d *Dispatcher) Dispatch(input io.Reader, output io.Writer) error {
	call, err := parser.ParseCall(input)
	if err != nil {
		return err
	}

	// From here on failures are encoded in the response.

	methodName := call.MethodName
	handlerName := DefaultHandlerName
	if sep := strings.LastIndex(methodName, "."); sep != -1 {
		handlerName = methodName[:sep]
		methodName = methodName[sep+1:]
	}

	handler := d.server.GetInvocationHandler(handlerName)
	if handler == nil {
		d.writeError(output, -1, "handler not found: "+handlerName)
		return nil
	}

	// Zero-overhead path: the invocation object exists only when an
	// interceptor will see it.
	chain := d.server.interceptorsSnapshot()
	var inv *interceptor.Invocation
	if len(chain) > 0 {
		inv = &interceptor.Invocation{
			CallID:      d.server.nextCallID(),
			HandlerName: handlerName,
			MethodName:  methodName,
			Handler:     handler,
			Arguments:   call.Arguments,
			Output:      output,
		}
	}

	if !d.before(chain, inv) {
		d.writeError(output, -1, "invocation cancelled")
		return nil
	}

	ret, err := handler.Invoke(methodName, call.Arguments)
	if err == nil {
		var result interceptor.Result
		if value.IsNoValue(ret) {
			result = interceptor.Void()
		} else {
			result = interceptor.ValueOf(ret)
		}
		result = d.after(chain, inv, result)

		if result.IsHandled() {
			// An interceptor wrote the response directly; nothing
			// further may be written.
			return nil
		}
		err = d.writeValue(output, result)
		if err == nil {
			return nil
		}
	}

	// Single failure-recovery point for the call: notify interceptors,
	// then encode the fault. Only a faults.Fault carries a custom code.
	d.onException(chain, inv, err)
	d.writeError(output, faults.CodeOf(err), fmt.Sprintf("%T: %v", err, err))
	return nil
}

// before runs the Before chain; false means the call is cancelled.
func (d *Dispatcher) before(chain []interceptor.Interceptor, inv *interceptor.Invocation) bool {
	for _, i := range chain {
		if !i.Before(inv) {
			return false
		}
	}
	return true
}

// after runs the After chain; a handled result breaks the chain
// immediately.
func (d *Dispatcher) after(chain []interceptor.Interceptor, inv *interceptor.Invocation, result interceptor.Result) interceptor.Result {
	for _, i := range chain {
		result = i.After(inv, result)
		if result.IsHandled() {
			return result
		}
	}
	return result
}

// onException notifies the interceptors best-effort, before the fault
// is written.
func (d *Dispatcher) onException(chain []interceptor.Interceptor, inv *interceptor.Invocation, err error) {
	for _, i := range chain {
		i.OnException(inv, err)
	}
}

// writeValue encodes a normal response. The envelope is staged in a
// buffer so a serialization failure mid-value can still be turned into
// a clean fault response.
func (d *Dispatcher) writeValue(output io.Writer, result interceptor.Result) error {
	ser := d.server.Serializer()

	var v any
	if !result.IsVoid() {
		v = result.Value()
	}

	var buf bytes.Buffer
	if err := ser.WriteEnvelopeHeader(v, &buf); err != nil {
		return err
	}
	if v != nil {
		if err := ser.Serialize(v, &buf); err != nil {
			return err
		}
	}
	if err := ser.WriteEnvelopeFooter(v, &buf); err != nil {
		return err
	}

	_, err := output.Write(buf.Bytes())
	return err
}

// writeError encodes a fault response. If fault writing itself fails
// there is no further fallback: the error is logged and swallowed.
func (d *Dispatcher) writeError(output io.Writer, code int, message string) {
	logger := d.server.log()
	logger.Warn("writing fault",
		zap.Int("code", code),
		zap.String("message", message),
		zap.String("caller_ip", d.callerIP))

	if err := d.server.Serializer().WriteError(code, message, output); err != nil {
		logger.Error("failed to send fault response", zap.Error(err))
	}
}
