// Package server holds the process-wide call-routing state and the
// per-request dispatcher.
//
// Request processing pipeline:
//
//	transport hands (input, output) to a fresh Dispatcher
//	  → parser.ParseCall → handler lookup → interceptor chain
//	    → handler.Invoke → serializer (normal response or fault)
//
// A Server is shared by all requests; each request gets its own
// Dispatcher instance. The handler registry, interceptor list and
// serializer are read-mostly, guarded by a single RWMutex so an
// administrative path can register and unregister concurrently with
// dispatching.
package server

import (
	"io"
	"sync"

	"go.uber.org/zap"

	"xmlrpc/interceptor"
	"xmlrpc/serializer"
)

// DefaultHandlerName is the handler resolved for method names that
// contain no "." separator.
const DefaultHandlerName = "__default__"

// Server routes inbound calls to registered invocation handlers.
type Server struct {
	mu           sync.RWMutex
	handlers     map[string]interceptor.InvocationHandler
	interceptors []interceptor.Interceptor
	serializer   serializer.Serializer
	ids          CallIDSource
	logger       *zap.Logger
}

// NewServer creates a server with the XML serializer (extensions
// disabled), a counter-based call-id source, and a no-op logger.
func NewServer() *Server {
	return &Server{
		handlers:   make(map[string]interceptor.InvocationHandler),
		serializer: serializer.NewXMLSerializer(false),
		ids:        NewSequence(),
		logger:     zap.NewNop(),
	}
}

// AddInvocationHandler publishes a handler under the given name. The
// portion of an inbound method name before the last "." selects the
// handler; use DefaultHandlerName for calls without a separator.
func (s *Server) AddInvocationHandler(name string, h interceptor.InvocationHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[name] = h
}

// RemoveInvocationHandler withdraws a published handler. No-op if the
// name is not registered.
func (s *Server) RemoveInvocationHandler(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers, name)
}

// GetInvocationHandler returns the handler published under name, or nil.
func (s *Server) GetInvocationHandler(name string) interceptor.InvocationHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handlers[name]
}

// AddInvocationInterceptor appends an interceptor. Interceptors run in
// registration order for Before, After and OnException alike.
func (s *Server) AddInvocationInterceptor(i interceptor.Interceptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interceptors = append(s.interceptors, i)
}

// RemoveInvocationInterceptor removes an interceptor by identity.
func (s *Server) RemoveInvocationInterceptor(i interceptor.Interceptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for idx, existing := range s.interceptors {
		if existing == i {
			updated := make([]interceptor.Interceptor, 0, len(s.interceptors)-1)
			updated = append(updated, s.interceptors[:idx]...)
			updated = append(updated, s.interceptors[idx+1:]...)
			s.interceptors = updated
			return
		}
	}
}

// SetSerializer replaces the response serializer (e.g. with the JSON
// flavor). Affects subsequent dispatches.
func (s *Server) SetSerializer(ser serializer.Serializer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serializer = ser
}

// Serializer returns the current response serializer.
func (s *Server) Serializer() serializer.Serializer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.serializer
}

// SetCallIDSource replaces the injected call-id source.
func (s *Server) SetCallIDSource(ids CallIDSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = ids
}

// SetLogger replaces the server logger.
func (s *Server) SetLogger(logger *zap.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}

// Execute runs one complete call on a fresh dispatcher. Convenience for
// transports that do not track a caller address.
func (s *Server) Execute(input io.Reader, output io.Writer) error {
	return NewDispatcher(s, "").Dispatch(input, output)
}

// interceptorsSnapshot copies the interceptor list so a dispatch runs
// against a stable chain even if the administrative path mutates it
// mid-call.
func (s *Server) interceptorsSnapshot() []interceptor.Interceptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.interceptors) == 0 {
		return nil
	}
	snap := make([]interceptor.Interceptor, len(s.interceptors))
	copy(snap, s.interceptors)
	return snap
}

func (s *Server) nextCallID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ids.NextID()
}

func (s *Server) log() *zap.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logger
}
