// Package registry announces XML-RPC endpoints to a service registry so
// clients can discover where a service is reachable.
package registry

// Endpoint describes one reachable XML-RPC server.
type Endpoint struct {
	Addr    string // routable host:port of the HTTP binding
	Path    string // request path, e.g. "/xmlrpc"
	Version string
}

// Registry is the endpoint announcement interface. The HTTP transport
// registers its advertise address on startup and deregisters it during
// graceful shutdown.
type Registry interface {
	Register(service string, ep Endpoint, ttl int64) error
	Deregister(service string, addr string) error
	Discover(service string) ([]Endpoint, error)
	Watch(service string) <-chan []Endpoint
}
