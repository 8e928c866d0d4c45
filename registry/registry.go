package registry

// ServiceInstance describes one dispatchrpc server process reachable at Addr.
// Handlers lists the handler names it has Register()'d — the same strings
// passed to server.Server.Register and carried on the wire as message.Query's
// Handler field — so a caller can tell whether an instance actually serves
// the handler it wants before routing a Call to it. An instance that leaves
// Handlers empty is treated as serving everything under its service name,
// so registries that never populate it (or old entries written before this
// field existed) keep working.
type ServiceInstance struct {
	Addr     string
	Weight   int // Weight for load balancing
	Version  string
	Handlers []string
}

// ServesHandler reports whether s advertises handler.
func (s ServiceInstance) ServesHandler(handler string) bool {
	if len(s.Handlers) == 0 {
		return true
	}
	for _, h := range s.Handlers {
		if h == handler {
			return true
		}
	}
	return false
}

type Registry interface {
	Register(serviceName string, instance ServiceInstance, ttl int64) error
	Deregister(serviceName string, addr string) error
	Discover(serviceName string) ([]ServiceInstance, error)
	// DiscoverHandler narrows Discover to the instances of serviceName that
	// advertise handler, so discovery.Pool never routes a Call to an
	// instance that never registered it.
	DiscoverHandler(serviceName, handler string) ([]ServiceInstance, error)
	Watch(serviceName string) <-chan []ServiceInstance
}
