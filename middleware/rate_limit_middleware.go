package middleware

import (
	"context"

	"golang.org/x/time/rate"

	"dispatchrpc/message"
)

// RateLimit builds a token-bucket rate limiter admitting r queries per
// second with the given burst, rejecting the rest with a failure Response
// rather than blocking the worker.
func RateLimit(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, q *message.Query) *message.Response {
			if !limiter.Allow() {
				return &message.Response{
					Message:  message.Message{Dispatch: q.Dispatch},
					Ok:       false,
					ErrorMsg: "rate limit exceeded",
				}
			}
			return next(ctx, q)
		}
	}
}
