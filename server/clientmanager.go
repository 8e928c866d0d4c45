package server

import (
	"net"
	"sync/atomic"

	"go.uber.org/zap"

	"dispatchrpc/message"
	"dispatchrpc/protocol"
	"dispatchrpc/queue"
	"dispatchrpc/rpcerr"
)

// ClientManager owns one accepted connection: a reader goroutine that
// decodes inbound Queries and submits them to the server's ingress queue,
// and a writer goroutine that drains this connection's own outgoing queue
// and frames each Response onto the socket. It lives until the socket fails
// in either direction; IsAlive reports that state to the reaper.
//
// This restructures BX-D-mini-RPC's handleConn — which wrote responses
// directly from each per-request goroutine under a shared write mutex —
// into the explicit writer-loop-over-an-owned-queue shape spec.md §4.4
// requires, so that a slow write never blocks the reader and Response order
// per connection follows worker completion order into the outgoing queue.
type ClientManager struct {
	conn     net.Conn
	server   *Server
	logger   *zap.Logger
	outgoing *queue.BoundedQueue[*message.Response]

	alive             atomic.Bool
	queriesReceived   atomic.Uint64
	responsesReturned atomic.Uint64
}

const outgoingQueueCapacity = 256

func newClientManager(conn net.Conn, s *Server) *ClientManager {
	cm := &ClientManager{
		conn:     conn,
		server:   s,
		logger:   s.logger,
		outgoing: queue.New[*message.Response](outgoingQueueCapacity),
	}
	cm.alive.Store(true)
	return cm
}

// start launches the reader and writer loops.
func (cm *ClientManager) start() {
	go cm.readLoop()
	go cm.writeLoop()
}

// IsAlive reports whether the socket is still believed healthy — the reader
// and writer loops are still running and neither has observed an error.
func (cm *ClientManager) IsAlive() bool {
	return cm.alive.Load()
}

// Stats snapshots this connection's counters.
func (cm *ClientManager) Stats() ClientStats {
	return ClientStats{
		Addr:                cm.conn.RemoteAddr().String(),
		OutgoingQueueLength: cm.outgoing.Count(),
		QueriesReceived:     cm.queriesReceived.Load(),
		ResponsesReturned:   cm.responsesReturned.Load(),
	}
}

// markDead flips the liveness flag exactly once, closes the outgoing queue
// (waking the writer loop) and the socket. Both the reader and the writer
// call this on their own failures, so it must be idempotent.
func (cm *ClientManager) markDead() {
	if cm.alive.CompareAndSwap(true, false) {
		cm.outgoing.Close()
		cm.conn.Close()
		cm.logger.Info("client connection closed", zap.String("addr", cm.conn.RemoteAddr().String()))
	}
}

func (cm *ClientManager) readLoop() {
	for {
		frame, err := protocol.ReadFrame(cm.conn)
		if err != nil {
			cm.markDead()
			return
		}

		q, err := protocol.DecodeQuery(frame)
		if err != nil {
			// MalformedFrame: close the offending connection per spec.md §7.
			cm.logger.Warn("malformed query frame, closing connection", zap.Error(err))
			cm.markDead()
			return
		}
		cm.queriesReceived.Add(1)

		if !cm.server.submit(q, cm.outgoing) {
			// ServerOverloaded: acknowledge on this connection and keep
			// reading — overload on one connection must not stall another.
			cm.outgoing.TryEnqueue(&message.Response{
				Message:  message.Message{Dispatch: q.Dispatch},
				Ok:       false,
				ErrorMsg: rpcerr.ErrServerOverloaded.Error(),
			})
		}
	}
}

func (cm *ClientManager) writeLoop() {
	for {
		resp, ok := cm.outgoing.TryDequeue(0)
		if !ok {
			return
		}
		body := protocol.EncodeResponse(resp)
		if err := protocol.WriteFrame(cm.conn, body); err != nil {
			cm.markDead()
			return
		}
		cm.responsesReturned.Add(1)
	}
}
