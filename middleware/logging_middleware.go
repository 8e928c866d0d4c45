package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"

	"dispatchrpc/message"
)

// Logging logs each handler invocation's handler name, duration, and error
// (if any) through the given zap.Logger.
func Logging(logger *zap.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, q *message.Query) *message.Response {
			start := time.Now()
			resp := next(ctx, q)
			fields := []zap.Field{
				zap.String("handler", q.Handler),
				zap.Duration("duration", time.Since(start)),
			}
			if !resp.Ok {
				logger.Warn("handler failed", append(fields, zap.String("error", resp.ErrorMsg))...)
			} else {
				logger.Debug("handler completed", fields...)
			}
			return resp
		}
	}
}
