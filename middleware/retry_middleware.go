package middleware

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"dispatchrpc/message"
)

// Retry re-invokes next up to maxRetries times, with exponential backoff,
// when its Response's error message looks transient ("timeout" or
// "connection refused"). Any other failure returns immediately.
func Retry(logger *zap.Logger, maxRetries int, baseDelay time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, q *message.Query) *message.Response {
			resp := next(ctx, q)
			for i := 0; i < maxRetries; i++ {
				if resp.Ok {
					return resp
				}
				if !isTransient(resp.ErrorMsg) {
					return resp
				}
				logger.Info("retrying handler",
					zap.String("handler", q.Handler),
					zap.Int("attempt", i+1),
					zap.String("error", resp.ErrorMsg))
				time.Sleep(baseDelay * time.Duration(1<<i))
				resp = next(ctx, q)
			}
			return resp
		}
	}
}

func isTransient(errMsg string) bool {
	return strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "connection refused")
}
