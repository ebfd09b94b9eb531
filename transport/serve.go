package transport

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"xmlrpc/config"
	"xmlrpc/interceptor"
	"xmlrpc/registry"
	"xmlrpc/serializer"
	"xmlrpc/server"
)

// HTTPServer runs the HTTP binding as a standalone server with optional
// endpoint announcement and graceful shutdown.
type HTTPServer struct {
	cfg      config.Config
	httpSrv  *http.Server
	registry registry.Registry
	logger   *zap.Logger
}

// NewHTTPServer wires a Server into an HTTP server according to cfg:
// serializer flavor, extension flag, rate limiting, and logging. Pass a
// nil registry to skip endpoint announcement.
func NewHTTPServer(s *server.Server, cfg config.Config, reg registry.Registry, logger *zap.Logger) *HTTPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.SetLogger(logger)

	h := NewHandler(s)
	h.SetLogger(logger)
	if cfg.Flavor == "json" {
		s.SetSerializer(serializer.NewJSONSerializer())
		h.SetContentType("text/javascript")
	} else {
		s.SetSerializer(serializer.NewXMLSerializer(cfg.Extensions))
	}

	if cfg.RateLimit.RPS > 0 {
		s.AddInvocationInterceptor(interceptor.NewRateLimitInterceptor(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, h)

	return &HTTPServer{
		cfg:      cfg,
		httpSrv:  &http.Server{Addr: cfg.Listen, Handler: mux},
		registry: reg,
		logger:   logger,
	}
}

// Serve announces the endpoint (if a registry is configured) and blocks
// serving requests until Shutdown.
func (t *HTTPServer) Serve() error {
	if t.registry != nil {
		ep := registry.Endpoint{Addr: t.cfg.Advertise, Path: t.cfg.Path}
		if err := t.registry.Register(t.cfg.Service, ep, t.cfg.Etcd.TTL); err != nil {
			return err
		}
	}

	t.logger.Info("serving",
		zap.String("listen", t.cfg.Listen),
		zap.String("path", t.cfg.Path),
		zap.String("flavor", t.cfg.Flavor))

	err := t.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown performs graceful shutdown:
//  1. Deregister the endpoint, so clients stop routing new calls here
//  2. Stop accepting connections and drain in-flight requests, bounded
//     by the timeout
func (t *HTTPServer) Shutdown(timeout time.Duration) error {
	if t.registry != nil {
		if err := t.registry.Deregister(t.cfg.Service, t.cfg.Advertise); err != nil {
			t.logger.Warn("failed to deregister endpoint", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return t.httpSrv.Shutdown(ctx)
}
