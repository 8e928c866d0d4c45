// Package middleware provides the optional handler-wrapping chain a
// WorkerPool may run a registered handler through before stamping the
// dispatch id and enqueuing the Response. It is the concrete form spec.md's
// "logging... treated as an external collaborator" language takes: nothing
// here is part of the CORE, and a Server with no middleware registered
// behaves exactly as spec.md §4.5 describes.
package middleware

import (
	"context"

	"dispatchrpc/message"
)

// HandlerFunc processes one Query and produces its Response.
type HandlerFunc func(ctx context.Context, q *message.Query) *message.Response

// Middleware wraps a HandlerFunc with additional behavior.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middlewares into one, applied in the order given:
// Chain(A, B, C)(handler) == A(B(C(handler))).
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
