package server

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"xmlrpc/faults"
	"xmlrpc/handler"
	"xmlrpc/interceptor"
	"xmlrpc/serializer"
	"xmlrpc/value"
)

func callXML(method string, params ...string) string {
	var b strings.Builder
	b.WriteString("<methodCall><methodName>")
	b.WriteString(method)
	b.WriteString("</methodName><params>")
	for _, p := range params {
		b.WriteString("<param>")
		b.WriteString(p)
		b.WriteString("</param>")
	}
	b.WriteString("</params></methodCall>")
	return b.String()
}

func addTable() *handler.Table {
	tbl := handler.NewTable()
	tbl.Register("add", []handler.Param{handler.Int, handler.Int}, func(args []any) (any, error) {
		return args[0].(int) + args[1].(int), nil
	})
	return tbl
}

func dispatch(t *testing.T, s *Server, request string) string {
	t.Helper()
	var out bytes.Buffer
	if err := s.Execute(strings.NewReader(request), &out); err != nil {
		t.Fatal(err)
	}
	return out.String()
}

func TestDispatchDefaultHandler(t *testing.T) {
	s := NewServer()
	s.AddInvocationHandler(DefaultHandlerName, addTable())

	got := dispatch(t, s, callXML("add",
		"<value><i4>2</i4></value>", "<value><i4>3</i4></value>"))
	want := `<?xml version="1.0" encoding="UTF-8"?><methodResponse><params><param>` +
		`<value><i4>5</i4></value></param></params></methodResponse>`
	if got != want {
		t.Fatalf("expect %s\ngot    %s", want, got)
	}
}

func TestDispatchDottedName(t *testing.T) {
	s := NewServer()
	s.AddInvocationHandler("math", addTable())

	got := dispatch(t, s, callXML("math.add",
		"<value><i4>2</i4></value>", "<value><i4>3</i4></value>"))
	if !strings.Contains(got, "<value><i4>5</i4></value>") {
		t.Fatalf("expect i4 5 in response, got %s", got)
	}

	// Only the last dot splits: "a.b.add" resolves handler "a.b".
	s.AddInvocationHandler("a.b", addTable())
	got = dispatch(t, s, callXML("a.b.add",
		"<value><i4>1</i4></value>", "<value><i4>1</i4></value>"))
	if !strings.Contains(got, "<value><i4>2</i4></value>") {
		t.Fatalf("expect i4 2 in response, got %s", got)
	}
}

func TestDispatchHandlerNotFound(t *testing.T) {
	s := NewServer()

	got := dispatch(t, s, callXML("Missing.method"))
	if !strings.Contains(got, "<fault>") {
		t.Fatalf("expect fault, got %s", got)
	}
	if !strings.Contains(got, "<value><int>-1</int></value>") {
		t.Fatalf("expect fault code -1, got %s", got)
	}
	if !strings.Contains(got, "handler not found: Missing") {
		t.Fatalf("expect handler name in message, got %s", got)
	}
}

func TestDispatchVoidResponse(t *testing.T) {
	tbl := handler.NewTable()
	tbl.Register("touch", nil, func(args []any) (any, error) {
		return value.NoValue, nil
	})
	s := NewServer()
	s.AddInvocationHandler(DefaultHandlerName, tbl)

	got := dispatch(t, s, callXML("touch"))
	want := `<?xml version="1.0" encoding="UTF-8"?><methodResponse><params><param>` +
		`<value><string>void</string></value></param></params></methodResponse>`
	if got != want {
		t.Fatalf("expect %s\ngot    %s", want, got)
	}
}

func TestDispatchCustomFaultCode(t *testing.T) {
	tbl := handler.NewTable()
	tbl.Register("fail", nil, func(args []any) (any, error) {
		return nil, faults.New(5, "boom")
	})
	s := NewServer()
	s.AddInvocationHandler(DefaultHandlerName, tbl)

	got := dispatch(t, s, callXML("fail"))
	if !strings.Contains(got, "<value><int>5</int></value>") {
		t.Fatalf("expect fault code 5, got %s", got)
	}
	if !strings.Contains(got, "boom") {
		t.Fatalf("expect message in fault, got %s", got)
	}
}

func TestDispatchPlainErrorCode(t *testing.T) {
	tbl := handler.NewTable()
	tbl.Register("fail", nil, func(args []any) (any, error) {
		return nil, errors.New("something broke")
	})
	s := NewServer()
	s.AddInvocationHandler(DefaultHandlerName, tbl)

	got := dispatch(t, s, callXML("fail"))
	if !strings.Contains(got, "<value><int>-1</int></value>") {
		t.Fatalf("expect fault code -1 for plain errors, got %s", got)
	}
	if !strings.Contains(got, "something broke") {
		t.Fatalf("expect message in fault, got %s", got)
	}
}

func TestDispatchNoSuchMethodFault(t *testing.T) {
	s := NewServer()
	s.AddInvocationHandler(DefaultHandlerName, addTable())

	got := dispatch(t, s, callXML("add", "<value><string>x</string></value>"))
	if !strings.Contains(got, "<fault>") {
		t.Fatalf("expect fault for argument mismatch, got %s", got)
	}
	if !strings.Contains(got, "<value><int>-1</int></value>") {
		t.Fatalf("expect fault code -1, got %s", got)
	}
}

func TestDispatchParseErrorWritesNothing(t *testing.T) {
	s := NewServer()
	var out bytes.Buffer

	err := s.Execute(strings.NewReader("this is not xml"), &out)
	if !errors.Is(err, faults.ErrMalformed) {
		t.Fatalf("expect malformed error, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("nothing must be written on a parse failure, got %s", out.String())
	}
}

// scriptedInterceptor drives chain tests from function fields.
type scriptedInterceptor struct {
	before  func(*interceptor.Invocation) bool
	after   func(*interceptor.Invocation, interceptor.Result) interceptor.Result
	onError func(*interceptor.Invocation, error)
}

func (si *scriptedInterceptor) Before(inv *interceptor.Invocation) bool {
	if si.before == nil {
		return true
	}
	return si.before(inv)
}

func (si *scriptedInterceptor) After(inv *interceptor.Invocation, r interceptor.Result) interceptor.Result {
	if si.after == nil {
		return r
	}
	return si.after(inv, r)
}

func (si *scriptedInterceptor) OnException(inv *interceptor.Invocation, err error) {
	if si.onError != nil {
		si.onError(inv, err)
	}
}

func TestDispatchBeforeVeto(t *testing.T) {
	invoked := 0
	tbl := handler.NewTable()
	tbl.Register("add", []handler.Param{handler.Int, handler.Int}, func(args []any) (any, error) {
		invoked++
		return 0, nil
	})

	s := NewServer()
	s.AddInvocationHandler(DefaultHandlerName, tbl)
	s.AddInvocationInterceptor(&scriptedInterceptor{
		before: func(*interceptor.Invocation) bool { return false },
	})

	got := dispatch(t, s, callXML("add",
		"<value><i4>1</i4></value>", "<value><i4>2</i4></value>"))
	if invoked != 0 {
		t.Fatalf("vetoed call must not reach the handler, invoked %d times", invoked)
	}
	if !strings.Contains(got, "invocation cancelled") {
		t.Fatalf("expect cancellation fault, got %s", got)
	}
	if !strings.Contains(got, "<value><int>-1</int></value>") {
		t.Fatalf("expect fault code -1, got %s", got)
	}
}

func TestDispatchVetoStopsChain(t *testing.T) {
	var trail []string
	s := NewServer()
	s.AddInvocationHandler(DefaultHandlerName, addTable())
	s.AddInvocationInterceptor(&scriptedInterceptor{
		before: func(*interceptor.Invocation) bool { trail = append(trail, "first"); return false },
	})
	s.AddInvocationInterceptor(&scriptedInterceptor{
		before: func(*interceptor.Invocation) bool { trail = append(trail, "second"); return true },
	})

	dispatch(t, s, callXML("add",
		"<value><i4>1</i4></value>", "<value><i4>2</i4></value>"))
	if len(trail) != 1 || trail[0] != "first" {
		t.Fatalf("expect only the first interceptor to run, got %v", trail)
	}
}

func TestDispatchAfterTakesOver(t *testing.T) {
	s := NewServer()
	s.AddInvocationHandler(DefaultHandlerName, addTable())
	s.AddInvocationInterceptor(&scriptedInterceptor{
		after: func(inv *interceptor.Invocation, r interceptor.Result) interceptor.Result {
			inv.Output.Write([]byte("CUSTOM"))
			return interceptor.Handled()
		},
	})
	// A later interceptor must not run after a handled result.
	ran := false
	s.AddInvocationInterceptor(&scriptedInterceptor{
		after: func(inv *interceptor.Invocation, r interceptor.Result) interceptor.Result {
			ran = true
			return r
		},
	})

	got := dispatch(t, s, callXML("add",
		"<value><i4>2</i4></value>", "<value><i4>3</i4></value>"))
	if got != "CUSTOM" {
		t.Fatalf("expect only the interceptor's output, got %s", got)
	}
	if ran {
		t.Fatal("handled result must short-circuit the remaining chain")
	}
}

func TestDispatchAfterReplacesResult(t *testing.T) {
	s := NewServer()
	s.AddInvocationHandler(DefaultHandlerName, addTable())
	s.AddInvocationInterceptor(&scriptedInterceptor{
		after: func(inv *interceptor.Invocation, r interceptor.Result) interceptor.Result {
			return interceptor.ValueOf(100)
		},
	})

	got := dispatch(t, s, callXML("add",
		"<value><i4>2</i4></value>", "<value><i4>3</i4></value>"))
	if !strings.Contains(got, "<value><i4>100</i4></value>") {
		t.Fatalf("expect replaced result, got %s", got)
	}
}

func TestDispatchOnExceptionNotified(t *testing.T) {
	tbl := handler.NewTable()
	tbl.Register("fail", nil, func(args []any) (any, error) {
		return nil, faults.New(9, "observed")
	})

	var seen error
	s := NewServer()
	s.AddInvocationHandler(DefaultHandlerName, tbl)
	s.AddInvocationInterceptor(&scriptedInterceptor{
		onError: func(inv *interceptor.Invocation, err error) { seen = err },
	})

	dispatch(t, s, callXML("fail"))
	if seen == nil || faults.CodeOf(seen) != 9 {
		t.Fatalf("expect fault 9 passed to OnException, got %v", seen)
	}
}

func TestDispatchCallIDsAdvance(t *testing.T) {
	var ids []string
	s := NewServer()
	s.AddInvocationHandler(DefaultHandlerName, addTable())
	s.AddInvocationInterceptor(&scriptedInterceptor{
		before: func(inv *interceptor.Invocation) bool {
			ids = append(ids, inv.CallID)
			return true
		},
	})

	req := callXML("add", "<value><i4>1</i4></value>", "<value><i4>2</i4></value>")
	dispatch(t, s, req)
	dispatch(t, s, req)

	if len(ids) != 2 || ids[0] != "1" || ids[1] != "2" {
		t.Fatalf("expect sequential ids [1 2], got %v", ids)
	}
}

func TestDispatchJSONFlavor(t *testing.T) {
	s := NewServer()
	s.SetSerializer(serializer.NewJSONSerializer())
	s.AddInvocationHandler(DefaultHandlerName, addTable())

	got := dispatch(t, s, callXML("add",
		"<value><i4>2</i4></value>", "<value><i4>3</i4></value>"))
	if got != "(5)" {
		t.Fatalf("expect (5), got %s", got)
	}

	// Faults drop the code in this flavor.
	got = dispatch(t, s, callXML("Missing.m"))
	if got != "'handler not found: Missing'" {
		t.Fatalf("expect quoted message, got %s", got)
	}
}

func TestHandlerRegistry(t *testing.T) {
	s := NewServer()
	tbl := addTable()
	s.AddInvocationHandler("math", tbl)

	if s.GetInvocationHandler("math") == nil {
		t.Fatal("expect registered handler")
	}
	s.RemoveInvocationHandler("math")
	if s.GetInvocationHandler("math") != nil {
		t.Fatal("expect handler removed")
	}

	got := dispatch(t, s, callXML("math.add",
		"<value><i4>1</i4></value>", "<value><i4>1</i4></value>"))
	if !strings.Contains(got, "handler not found") {
		t.Fatalf("expect fault after removal, got %s", got)
	}
}

func TestRemoveInterceptor(t *testing.T) {
	calls := 0
	si := &scriptedInterceptor{
		before: func(*interceptor.Invocation) bool { calls++; return true },
	}
	s := NewServer()
	s.AddInvocationHandler(DefaultHandlerName, addTable())
	s.AddInvocationInterceptor(si)

	req := callXML("add", "<value><i4>1</i4></value>", "<value><i4>2</i4></value>")
	dispatch(t, s, req)
	s.RemoveInvocationInterceptor(si)
	dispatch(t, s, req)

	if calls != 1 {
		t.Fatalf("expect 1 interceptor call after removal, got %d", calls)
	}
}

func TestSequenceIDs(t *testing.T) {
	seq := NewSequence()
	if id := seq.NextID(); id != "1" {
		t.Fatalf("expect 1, got %s", id)
	}
	if id := seq.NextID(); id != "2" {
		t.Fatalf("expect 2, got %s", id)
	}
}

func TestUUIDSource(t *testing.T) {
	var src UUIDSource
	a, b := src.NextID(), src.NextID()
	if a == "" || a == b {
		t.Fatalf("expect distinct non-empty ids, got %q and %q", a, b)
	}
}
