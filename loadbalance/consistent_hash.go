package loadbalance

import (
	"fmt"
	"hash/crc32"
	"sort"
	"sync"

	"dispatchrpc/registry"
)

// ConsistentHashBalancer maps a handler name to an instance using a hash
// ring, so repeated calls to the same handler prefer the same backend —
// useful when a handler keeps per-instance state a cold instance wouldn't
// have (a warm cache, a loaded model, an open cursor).
//
// Virtual nodes: each real instance is mapped to N virtual nodes on the ring.
// Without virtual nodes, 3 instances might cluster together on the ring,
// causing uneven load distribution. 100 virtual nodes per instance ensures
// statistical uniformity.
//
//	Hash Ring:
//	                  0
//	                ╱   ╲
//	              ╱       ╲
//	         B ●               ● A
//	           │  handler ◆──► │   (clockwise to nearest node → A)
//	         C ●               ● A' (virtual node of A)
//	              ╲       ╱
//	                ╲   ╱
//
// Unlike RoundRobinBalancer and WeightedRandomBalancer, the ring depends on
// which instances discovery.Pool last saw, so Pick rebuilds it whenever the
// instance set passed in has changed since the last call.
type ConsistentHashBalancer struct {
	replicas int // Virtual nodes per real instance

	mu    sync.Mutex
	ring  []uint32                             // Sorted hash values on the ring
	nodes map[uint32]*registry.ServiceInstance // Hash value → instance mapping
	addrs map[string]bool                      // addresses currently on the ring
}

// NewConsistentHashBalancer creates a hash ring with 100 virtual nodes per instance.
func NewConsistentHashBalancer() *ConsistentHashBalancer {
	return &ConsistentHashBalancer{
		replicas: 100,
		nodes:    make(map[uint32]*registry.ServiceInstance),
		addrs:    make(map[string]bool),
	}
}

// Pick hashes handler and binary-searches for the first node clockwise of it
// on the ring, rebuilding the ring first if instances no longer matches the
// address set the ring was last built from.
func (b *ConsistentHashBalancer) Pick(handler string, instances []registry.ServiceInstance) (*registry.ServiceInstance, error) {
	if len(instances) == 0 {
		return nil, fmt.Errorf("no instances available")
	}

	b.mu.Lock()
	if b.stale(instances) {
		b.rebuild(instances)
	}
	ring, nodes := b.ring, b.nodes
	b.mu.Unlock()

	hash := crc32.ChecksumIEEE([]byte(handler))

	// Binary search: find first node with hash >= handler's hash
	idx := sort.Search(len(ring), func(i int) bool {
		return ring[i] >= hash
	})

	// Wrap around: if handler's hash > all nodes, go to the first node
	if idx == len(ring) {
		idx = 0
	}

	return nodes[ring[idx]], nil
}

// stale reports whether instances' address set differs from the ring's.
// Must be called with b.mu held.
func (b *ConsistentHashBalancer) stale(instances []registry.ServiceInstance) bool {
	if len(instances) != len(b.addrs) {
		return true
	}
	for _, inst := range instances {
		if !b.addrs[inst.Addr] {
			return true
		}
	}
	return false
}

// rebuild replaces the ring with one built from instances, N virtual nodes
// per instance, hashed from "{addr}#{i}". Must be called with b.mu held.
func (b *ConsistentHashBalancer) rebuild(instances []registry.ServiceInstance) {
	ring := make([]uint32, 0, len(instances)*b.replicas)
	nodes := make(map[uint32]*registry.ServiceInstance, len(instances)*b.replicas)
	addrs := make(map[string]bool, len(instances))

	for i := range instances {
		inst := &instances[i]
		addrs[inst.Addr] = true
		for r := 0; r < b.replicas; r++ {
			key := fmt.Sprintf("%s#%d", inst.Addr, r)
			hash := crc32.ChecksumIEEE([]byte(key))
			ring = append(ring, hash)
			nodes[hash] = inst
		}
	}
	sort.Slice(ring, func(i, j int) bool { return ring[i] < ring[j] })

	b.ring = ring
	b.nodes = nodes
	b.addrs = addrs
}

func (b *ConsistentHashBalancer) Name() string {
	return "ConsistentHash"
}
