package server

// ServerStats is the payload of the built-in "_getStats" handler: the
// ingress queue's current depth plus a snapshot of every live client's
// counters.
type ServerStats struct {
	IngressQueueLength int
	Clients            []ClientStats
}

// ClientStats describes one live ClientManager's traffic counters.
type ClientStats struct {
	Addr                string
	OutgoingQueueLength int
	QueriesReceived     uint64
	ResponsesReturned   uint64
}

// Stats snapshots the server's current ingress depth and every live
// client's counters. It never blocks on any client's queue.
func (s *Server) Stats() ServerStats {
	stats := ServerStats{IngressQueueLength: s.ingress.Count()}
	s.clients.Range(func(key, _ any) bool {
		cm := key.(*ClientManager)
		stats.Clients = append(stats.Clients, cm.Stats())
		return true
	})
	return stats
}
