// Package message defines the wire-level data model shared by the client and
// server: the Query a caller sends and the Response a handler produces.
//
// Both embed Message, the abstract header carrying the dispatch id that
// correlates a Response back to its Query. A Query additionally carries the
// handler name; a Response carries the success flag and optional error text.
package message

import "time"

// Message is the header common to every frame: a dispatch id, unique within
// one Client's lifetime, and the opaque payload produced by the payload codec.
type Message struct {
	Dispatch    int32
	MessageData []byte
}

// Query is a single RPC request: a Message naming the server-side handler to
// invoke. Started is set by the client when the Query is created and is used
// to compute the remaining time budget against HardQueryTimeout; it is never
// put on the wire.
type Query struct {
	Message
	Handler string
	Started time.Time
}

// Response is a single RPC reply: a Message carrying the outcome of the
// handler invocation. ErrorMsg is empty iff Ok is true.
type Response struct {
	Message
	Ok       bool
	ErrorMsg string
}

// Timeout synthesizes the Response PendingRequests.Get returns when
// HardQueryTimeout elapses before a real Response arrives.
func Timeout(dispatch int32) *Response {
	return &Response{
		Message:  Message{Dispatch: dispatch},
		Ok:       false,
		ErrorMsg: "timeout",
	}
}
