package server

import (
	"sync"

	"dispatchrpc/message"
	"dispatchrpc/queue"
)

// job pairs a decoded Query with the destination queue its Response belongs
// on — the connection that submitted it.
type job struct {
	query       *message.Query
	destination *queue.BoundedQueue[*message.Response]
}

// workerPool runs a fixed number of goroutines pulling jobs off the ingress
// queue. Each worker blocks on the queue rather than spin-polling — the
// spec.md §9 open question about the source's busy-poll loop is resolved in
// favor of a blocking dequeue.
type workerPool struct {
	server  *Server
	ingress *queue.BoundedQueue[job]
	n       int
	wg      sync.WaitGroup
}

func newWorkerPool(s *Server, ingress *queue.BoundedQueue[job], n int) *workerPool {
	return &workerPool{server: s, ingress: ingress, n: n}
}

func (p *workerPool) start() {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

func (p *workerPool) run() {
	defer p.wg.Done()
	for {
		j, ok := p.ingress.TryDequeue(0)
		if !ok {
			return
		}
		resp := p.server.dispatch(j.query)
		resp.Dispatch = j.query.Dispatch
		j.destination.TryEnqueue(resp)
	}
}

// wait blocks until every worker has exited — only true once the ingress
// queue has been Closed and drained.
func (p *workerPool) wait() {
	p.wg.Wait()
}
