// Package client implements the CORE client side of dispatchrpc: a single
// multiplexed connection with a writer loop draining an outgoing Query
// queue, a reader loop decoding Responses into PendingRequests, and Call,
// which turns that asynchronous wire protocol into a synchronous request.
//
// This restructures BX-D-mini-RPC's transport.ClientTransport — which
// multiplexed with a sync.Map of per-sequence response channels guarded by a
// sending mutex — around the shared pending/queue packages the server side
// also uses, and drops the registry/load-balancer/connection-pool
// responsibilities the teacher's Client folded in: those live one layer up,
// in the discovery package, per spec.md's Non-goals for the CORE transport.
package client

import (
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"dispatchrpc/codec"
	"dispatchrpc/message"
	"dispatchrpc/pending"
	"dispatchrpc/protocol"
	"dispatchrpc/queue"
	"dispatchrpc/rpcerr"
)

// Client owns one connection to one server. It is safe for concurrent Call
// invocations from multiple goroutines.
type Client struct {
	conn     net.Conn
	codec    codec.Codec
	logger   *zap.Logger
	outgoing *queue.BoundedQueue[*message.Query]
	pending  *pending.Requests

	dispatchCounter atomic.Int32
	alive           atomic.Bool
}

// Connect dials addr and starts the writer and reader loops. The returned
// Client is ready for Call immediately.
func Connect(addr string, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}

	c := &Client{
		conn:     conn,
		codec:    o.codec,
		logger:   o.logger,
		outgoing: queue.New[*message.Query](o.outgoingCapacity),
		pending:  pending.New(),
	}
	c.alive.Store(true)

	go c.writeLoop()
	go c.readLoop()
	return c, nil
}

// Close stops the writer and reader loops and closes the connection.
func (c *Client) Close() error {
	if c.alive.CompareAndSwap(true, false) {
		c.outgoing.Close()
		return c.conn.Close()
	}
	return nil
}

// Call encodes input with the Client's codec, allocates a fresh dispatch id,
// enqueues the Query, and blocks until a matching Response arrives or
// HardQueryTimeout elapses. On a failure Response it returns an error
// derived from the Response's errorMsg; on success it decodes messageData
// into a fresh TOut.
func Call[TOut any](c *Client, handler string, input any) (TOut, error) {
	var zero TOut

	data, err := c.codec.Encode(input)
	if err != nil {
		return zero, fmt.Errorf("client: encode input: %w", err)
	}

	dispatch := c.dispatchCounter.Add(1)
	q := &message.Query{
		Message: message.Message{Dispatch: dispatch, MessageData: data},
		Handler: handler,
		Started: time.Now(),
	}

	c.pending.Add(q)

	if !c.outgoing.TryEnqueue(q) {
		// Transient write failure: drop the Query and let the caller observe
		// a timeout, per spec.md §4.7.
		c.pending.Delete(dispatch)
		return zero, rpcerr.ErrTimeout
	}

	resp := c.pending.Get(dispatch)
	if !resp.Ok {
		return zero, classifyFailure(resp.ErrorMsg)
	}

	if len(resp.MessageData) > 0 {
		if err := c.codec.Decode(resp.MessageData, &zero); err != nil {
			return zero, fmt.Errorf("client: decode result: %w", err)
		}
	}
	return zero, nil
}

// classifyFailure maps a Response's free-text errorMsg back onto the
// transport's sentinel errors where it recognizes one, so callers can use
// errors.Is instead of string matching; any other message is wrapped as-is.
func classifyFailure(errMsg string) error {
	switch errMsg {
	case rpcerr.ErrServerOverloaded.Error():
		return rpcerr.ErrServerOverloaded
	case "timeout":
		return rpcerr.ErrTimeout
	default:
		return fmt.Errorf("rpc: %s", errMsg)
	}
}

func (c *Client) writeLoop() {
	for {
		q, ok := c.outgoing.TryDequeue(0)
		if !ok {
			return
		}
		body := protocol.EncodeQuery(q)
		if err := protocol.WriteFrame(c.conn, body); err != nil {
			c.logger.Warn("write failed, closing connection", zap.Error(err))
			c.Close()
			return
		}
	}
}

func (c *Client) readLoop() {
	for {
		frame, err := protocol.ReadFrame(c.conn)
		if err != nil {
			c.Close()
			return
		}
		resp, err := protocol.DecodeResponse(frame)
		if err != nil {
			c.logger.Warn("malformed response frame, closing connection", zap.Error(err))
			c.Close()
			return
		}
		c.pending.Set(resp.Dispatch, resp)
	}
}
