// etcd-based implementation of the Registry interface.
//
// Endpoints live under:
//
//	Key:   /xmlrpc/{service}/{addr}
//	Value: JSON-encoded Endpoint
//
// Registration uses TTL-based leases: if the server crashes, the lease
// expires and the entry is removed automatically, so clients never see
// ghost endpoints.
package registry

import (
	"context"
	"encoding/json"

	clientv3 "go.etcd.io/etcd/client/v3"
)

const keyPrefix = "/xmlrpc/"

// EtcdRegistry implements Registry on etcd v3.
type EtcdRegistry struct {
	client *clientv3.Client // thread-safe, shared across goroutines
}

// NewEtcdRegistry connects to the given etcd endpoints.
func NewEtcdRegistry(endpoints []string) (*EtcdRegistry, error) {
	c, err := clientv3.New(clientv3.Config{
		Endpoints: endpoints,
	})
	if err != nil {
		return nil, err
	}
	return &EtcdRegistry{client: c}, nil
}

// Register announces an endpoint with a TTL lease and starts background
// lease renewal. The lease id stays a local variable: multiple servers
// may share one EtcdRegistry instance.
func (r *EtcdRegistry) Register(service string, ep Endpoint, ttl int64) error {
	ctx := context.TODO()

	lease, err := r.client.Grant(ctx, ttl)
	if err != nil {
		return err
	}

	val, err := json.Marshal(ep)
	if err != nil {
		return err
	}

	_, err = r.client.Put(ctx, keyPrefix+service+"/"+ep.Addr, string(val), clientv3.WithLease(lease.ID))
	if err != nil {
		return err
	}

	// KeepAlive renews the lease until the registry disappears; the
	// responses must be drained or the channel fills up.
	ch, err := r.client.KeepAlive(ctx, lease.ID)
	if err != nil {
		return err
	}
	go func() {
		for range ch {
		}
	}()
	return nil
}

// Deregister withdraws an endpoint. Called during graceful shutdown
// before the HTTP listener closes.
func (r *EtcdRegistry) Deregister(service string, addr string) error {
	_, err := r.client.Delete(context.TODO(), keyPrefix+service+"/"+addr)
	return err
}

// Discover returns all currently announced endpoints for a service.
func (r *EtcdRegistry) Discover(service string) ([]Endpoint, error) {
	resp, err := r.client.Get(context.TODO(), keyPrefix+service+"/", clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}

	endpoints := make([]Endpoint, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var ep Endpoint
		if err := json.Unmarshal(kv.Value, &ep); err != nil {
			continue // skip malformed entries
		}
		endpoints = append(endpoints, ep)
	}
	return endpoints, nil
}

// Watch emits the full endpoint list whenever anything changes under
// the service prefix (registration, deregistration, lease expiry).
func (r *EtcdRegistry) Watch(service string) <-chan []Endpoint {
	ch := make(chan []Endpoint, 1)

	go func() {
		watchChan := r.client.Watch(context.TODO(), keyPrefix+service+"/", clientv3.WithPrefix())
		for range watchChan {
			// Re-fetch the full list on any change; simpler than
			// folding individual watch events.
			endpoints, _ := r.Discover(service)
			ch <- endpoints
		}
	}()

	return ch
}
