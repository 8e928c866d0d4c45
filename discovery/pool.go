// Package discovery is the supplemental extension point where
// cross-connection routing lives: it composes a registry.Registry, a
// loadbalance.Balancer and a pool of client.Client connections into a single
// Call that discovers, picks, and dials on demand. The CORE client.Client
// stays a single-connection synchronous caller and never imports this
// package; Pool sits one layer above it, mirroring the layering
// BX-D-mini-RPC's own Client drew between transport and registry/balancer.
package discovery

import (
	"fmt"
	"sync"

	"dispatchrpc/client"
	"dispatchrpc/loadbalance"
	"dispatchrpc/registry"
)

// Pool discovers instances of a named service, picks one with a Balancer,
// and reuses one long-lived client.Client per address.
type Pool struct {
	registry registry.Registry
	balancer loadbalance.Balancer
	opts     []client.Option

	mu      sync.Mutex
	clients map[string]*client.Client
}

// NewPool builds a Pool over reg and bal. opts are forwarded to every
// client.Connect this Pool performs.
func NewPool(reg registry.Registry, bal loadbalance.Balancer, opts ...client.Option) *Pool {
	return &Pool{
		registry: reg,
		balancer: bal,
		opts:     opts,
		clients:  make(map[string]*client.Client),
	}
}

// clientFor returns the pooled Client for addr, dialing one on first use.
func (p *Pool) clientFor(addr string) (*client.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[addr]; ok {
		return c, nil
	}
	c, err := client.Connect(addr, p.opts...)
	if err != nil {
		return nil, err
	}
	p.clients[addr] = c
	return c, nil
}

// Call discovers the instances of serviceName that advertise handler, picks
// one via the Balancer, and issues handler against it through a pooled
// connection.
func Call[TOut any](p *Pool, serviceName, handler string, input any) (TOut, error) {
	var zero TOut

	instances, err := p.registry.DiscoverHandler(serviceName, handler)
	if err != nil {
		return zero, fmt.Errorf("discovery: discover %q: %w", serviceName, err)
	}
	if len(instances) == 0 {
		return zero, fmt.Errorf("discovery: no instance of %q serves handler %q", serviceName, handler)
	}
	instance, err := p.balancer.Pick(handler, instances)
	if err != nil {
		return zero, fmt.Errorf("discovery: pick instance for %q: %w", serviceName, err)
	}

	c, err := p.clientFor(instance.Addr)
	if err != nil {
		return zero, fmt.Errorf("discovery: connect to %s: %w", instance.Addr, err)
	}

	return client.Call[TOut](c, handler, input)
}

// Close closes every pooled connection.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for addr, c := range p.clients {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.clients, addr)
	}
	return firstErr
}
