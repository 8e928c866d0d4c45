package server

import (
	"time"

	"go.uber.org/zap"

	"dispatchrpc/codec"
	"dispatchrpc/log"
	"dispatchrpc/middleware"
)

// Defaults per spec.md §6's configuration table.
const (
	DefaultIngressCapacity = 2000
	DefaultWorkers         = 8
	DefaultReaperInterval  = 2 * time.Second
)

type options struct {
	ingressCapacity int
	workers         int
	reaperInterval  time.Duration
	logger          *zap.Logger
	codec           codec.Codec
	middlewares     []middleware.Middleware
}

func defaultOptions() options {
	return options{
		ingressCapacity: DefaultIngressCapacity,
		workers:         DefaultWorkers,
		reaperInterval:  DefaultReaperInterval,
		logger:          log.New(),
		codec:           &codec.JSONCodec{},
	}
}

// Option configures a Server at construction time.
type Option func(*options)

// WithIngressCapacity overrides the ingress queue's fixed capacity.
func WithIngressCapacity(n int) Option {
	return func(o *options) { o.ingressCapacity = n }
}

// WithWorkers overrides the number of worker goroutines.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithReaperInterval overrides how often the dead-client reaper sweeps.
func WithReaperInterval(d time.Duration) Option {
	return func(o *options) { o.reaperInterval = d }
}

// WithLogger overrides the default zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithCodec overrides the payload codec used to decode Query arguments and
// encode handler results. It must match the codec the client uses for its
// Call payloads.
func WithCodec(c codec.Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithMiddleware appends handler middleware run, in order, around every
// registered handler (including the built-ins).
func WithMiddleware(mw ...middleware.Middleware) Option {
	return func(o *options) { o.middlewares = append(o.middlewares, mw...) }
}
