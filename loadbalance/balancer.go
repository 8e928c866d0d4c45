// Package loadbalance provides load balancing strategies for distributing
// RPC requests across multiple service instances.
//
// Three strategies are implemented:
//   - RoundRobin:      Stateless services, equal-capacity instances
//   - WeightedRandom:  Heterogeneous instances (different CPU/memory)
//   - ConsistentHash:  Stateful services requiring cache affinity
package loadbalance

import "dispatchrpc/registry"

// Balancer is the interface for load balancing strategies.
// discovery.Pool calls Pick before every Call, once instances has already
// been narrowed by registry.Registry.DiscoverHandler to the ones that
// actually serve handler.
type Balancer interface {
	// Pick selects one instance from the available list. handler is the RPC
	// handler name being dispatched (message.Query.Handler on the wire) —
	// RoundRobin and WeightedRandom ignore it, ConsistentHash hashes it so
	// every call to the same handler prefers the same instance instead of
	// spreading them at random. Must be goroutine-safe.
	Pick(handler string, instances []registry.ServiceInstance) (*registry.ServiceInstance, error)

	// Name returns the strategy name (for logging/debugging).
	Name() string
}
