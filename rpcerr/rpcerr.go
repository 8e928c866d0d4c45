// Package rpcerr defines the sentinel error kinds named in the transport's
// error taxonomy, so server and client code can compare with errors.Is
// instead of matching on message strings.
package rpcerr

import "errors"

var (
	// ErrHandlerAlreadyRegistered is returned by Register when name is already
	// present in the registry.
	ErrHandlerAlreadyRegistered = errors.New("rpcerr: handler already registered")

	// ErrReservedName is returned by Register for any name beginning with "_"
	// that is not one of the pre-registered built-ins.
	ErrReservedName = errors.New("rpcerr: handler names beginning with '_' are reserved")

	// ErrAfterStart is returned by Register once the server's registry has
	// been frozen by Start.
	ErrAfterStart = errors.New("rpcerr: cannot register handlers after Start")

	// ErrUnknownHandler marks a Query naming a handler absent from the
	// registry.
	ErrUnknownHandler = errors.New("rpcerr: unknown handler")

	// ErrServerOverloaded marks a Query the ClientManager could not place on
	// the ingress queue because it was at capacity.
	ErrServerOverloaded = errors.New("rpcerr: server overloaded")

	// ErrMalformedFrame marks a frame whose declared lengths do not match its
	// buffer.
	ErrMalformedFrame = errors.New("rpcerr: malformed frame")

	// ErrShortRead marks a connection that ended in the middle of a frame.
	ErrShortRead = errors.New("rpcerr: short read")

	// ErrTimeout marks a client call that exceeded HardQueryTimeout without a
	// Response.
	ErrTimeout = errors.New("rpcerr: timeout")

	// ErrTransportClosed marks a client call whose connection failed before a
	// Response arrived.
	ErrTransportClosed = errors.New("rpcerr: transport closed")
)
