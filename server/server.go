// Package server implements the CORE server side of dispatchrpc: the
// listener, handler registry, worker pool, and dead-client reaper described
// in spec.md §4.4-§4.6. It restructures BX-D-mini-RPC's server package
// (which parsed handler names as "Service.Method" and invoked struct
// methods by reflection) around a flat handler-name registry and a bounded
// ingress queue feeding a fixed worker pool, per spec.md's data model.
package server

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"dispatchrpc/codec"
	"dispatchrpc/message"
	"dispatchrpc/middleware"
	"dispatchrpc/queue"
)

// Server accepts connections, dispatches Queries to registered handlers via
// a fixed worker pool, and reaps dead ClientManagers on an interval.
type Server struct {
	mu       sync.RWMutex
	handlers map[string]wrappedHandler

	middlewares []middleware.Middleware
	codec       codec.Codec
	logger      *zap.Logger

	listener net.Listener
	ingress  *queue.BoundedQueue[job]
	pool     *workerPool
	clients  sync.Map // *ClientManager -> struct{}

	reaperInterval time.Duration
	reaperDone     chan struct{}

	started  atomic.Bool
	shutdown atomic.Bool
}

// NewServer builds a Server with the given options applied over the
// defaults in spec.md §6 (ingress capacity 2000, 8 workers, 2s reaper
// interval) and pre-registers the "_ping" and "_getStats" built-ins.
func NewServer(opts ...Option) *Server {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		handlers:       make(map[string]wrappedHandler),
		middlewares:    o.middlewares,
		codec:          o.codec,
		logger:         o.logger,
		ingress:        queue.New[job](o.ingressCapacity),
		reaperInterval: o.reaperInterval,
		reaperDone:     make(chan struct{}),
	}
	s.pool = newWorkerPool(s, s.ingress, o.workers)
	s.registerBuiltins()
	return s
}

// Use appends middleware run around every handler invocation, in the order
// given. It must be called before Start.
func (s *Server) Use(mw ...middleware.Middleware) {
	s.middlewares = append(s.middlewares, mw...)
}

// submit places (query, destination) on the ingress queue. It returns false
// when the queue was full — the caller (a ClientManager's reader loop) is
// responsible for synthesizing the ServerOverloaded Response.
func (s *Server) submit(q *message.Query, destination *queue.BoundedQueue[*message.Response]) bool {
	return s.ingress.TryEnqueue(job{query: q, destination: destination})
}

// Start binds address, freezes the handler registry, launches the worker
// pool and the reaper, and blocks in the accept loop until Shutdown closes
// the listener. Individual accept failures are logged and do not stop the
// loop, per spec.md §7.
func (s *Server) Start(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}
	s.started.Store(true)
	s.listener = listener

	s.pool.start()
	go s.reap()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.shutdown.Load() {
				return nil
			}
			s.logger.Error("accept failed", zap.Error(err))
			continue
		}
		cm := newClientManager(conn, s)
		s.clients.Store(cm, struct{}{})
		cm.start()
	}
}

// Addr returns the listener's bound address, or nil if Start has not yet
// bound one.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// reap runs until Shutdown, removing ClientManagers whose IsAlive is false
// from the live set every reaperInterval, per spec.md §4.6.
func (s *Server) reap() {
	ticker := time.NewTicker(s.reaperInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.clients.Range(func(key, _ any) bool {
				cm := key.(*ClientManager)
				if !cm.IsAlive() {
					s.clients.Delete(cm)
				}
				return true
			})
		case <-s.reaperDone:
			return
		}
	}
}

// Shutdown stops accepting new connections, closes every live
// ClientManager, closes the ingress queue, and waits (up to timeout) for
// in-flight worker jobs to finish.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.shutdown.Store(true)
	close(s.reaperDone)

	if s.listener != nil {
		s.listener.Close()
	}

	s.clients.Range(func(key, _ any) bool {
		key.(*ClientManager).markDead()
		return true
	})

	s.ingress.Close()

	done := make(chan struct{})
	go func() {
		s.pool.wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return errors.New("server: timeout waiting for workers to drain")
	}
}
