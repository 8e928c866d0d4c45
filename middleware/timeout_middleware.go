package middleware

import (
	"context"
	"time"

	"dispatchrpc/message"
)

// Timeout bounds a single handler invocation to timeout, independent of
// PendingRequests.HardQueryTimeout on the client side. It exists for
// handlers that should fail fast server-side rather than run to completion
// after the caller has plausibly given up.
func Timeout(timeout time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, q *message.Query) *message.Response {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			done := make(chan *message.Response, 1)
			go func() {
				done <- next(ctx, q)
			}()

			select {
			case resp := <-done:
				return resp
			case <-ctx.Done():
				return &message.Response{
					Message:  message.Message{Dispatch: q.Dispatch},
					Ok:       false,
					ErrorMsg: "request timed out",
				}
			}
		}
	}
}
