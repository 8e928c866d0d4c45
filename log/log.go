// Package log provides the structured logger shared by server and client.
// It wraps go.uber.org/zap, already present in the dependency graph as the
// etcd client's own logging library, so the transport logs the same way its
// discovery layer does.
package log

import "go.uber.org/zap"

// New returns a production zap.Logger. Components accept an override via
// their own WithLogger option; New is only the default.
func New() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		// zap.NewProduction only fails if it cannot open its default sink;
		// fall back to a logger that never errors so callers never need to
		// handle a nil logger.
		return zap.NewNop()
	}
	return logger
}
