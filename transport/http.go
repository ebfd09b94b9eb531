// Package transport binds the dispatch core to HTTP, the protocol's
// native carrier.
//
// Request processing:
//
//	POST body → fresh server.Dispatcher → buffered response
//	  → Content-Type text/xml (or text/javascript for the JSON flavor)
//
// Each request gets its own dispatcher; the only state shared between
// requests is the Server itself.
package transport

import (
	"bytes"
	"io"
	"net"
	"net/http"

	"go.uber.org/zap"

	"xmlrpc/server"
)

// Handler serves XML-RPC calls over HTTP. It implements http.Handler
// and can be mounted on any mux.
type Handler struct {
	server      *server.Server
	logger      *zap.Logger
	contentType string
}

// NewHandler creates a handler for the given server, answering with
// Content-Type text/xml.
func NewHandler(s *server.Server) *Handler {
	return &Handler{server: s, logger: zap.NewNop(), contentType: "text/xml"}
}

// SetLogger replaces the no-op logger.
func (h *Handler) SetLogger(logger *zap.Logger) {
	h.logger = logger
}

// SetContentType overrides the response content type; use
// "text/javascript" with the JSON serializer.
func (h *Handler) SetContentType(contentType string) {
	h.contentType = contentType
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer func() {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, r.Body)
		r.Body.Close()
	}()

	callerIP, _, _ := net.SplitHostPort(r.RemoteAddr)

	// The response is buffered: a parse failure must produce a plain
	// HTTP error, not a half-written envelope.
	var buf bytes.Buffer
	d := server.NewDispatcher(h.server, callerIP)
	if err := d.Dispatch(r.Body, &buf); err != nil {
		h.logger.Warn("rejecting malformed request",
			zap.String("caller_ip", callerIP),
			zap.Error(err))
		http.Error(w, "malformed XML-RPC request", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", h.contentType)
	w.Write(buf.Bytes())
}
