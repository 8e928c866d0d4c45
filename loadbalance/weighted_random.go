package loadbalance

import (
	"fmt"
	"math/rand"

	"dispatchrpc/registry"
)

type WeightedRandomBalancer struct{}

// Pick weighs the random draw by each instance's Weight; handler plays no
// part in the choice, unlike ConsistentHashBalancer.
func (b *WeightedRandomBalancer) Pick(handler string, instances []registry.ServiceInstance) (*registry.ServiceInstance, error) {
	if len(instances) == 0 {
		return nil, fmt.Errorf("no instances available")
	}

	totalWeight := 0
	for _, v := range instances {
		totalWeight += v.Weight
	}

	r := rand.Intn(totalWeight)
	for _, v := range instances {
		r -= v.Weight
		if r < 0 {
			return &v, nil
		}
	}

	return nil, fmt.Errorf("unexpected error in weighted random selection")
}

func (b *WeightedRandomBalancer) Name() string {
	return "WeightedRandom"
}
