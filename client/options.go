package client

import (
	"go.uber.org/zap"

	"dispatchrpc/codec"
	"dispatchrpc/log"
)

const defaultOutgoingCapacity = 256

type options struct {
	codec            codec.Codec
	logger           *zap.Logger
	outgoingCapacity int
}

func defaultOptions() options {
	return options{
		codec:            &codec.JSONCodec{},
		logger:           log.New(),
		outgoingCapacity: defaultOutgoingCapacity,
	}
}

// Option configures a Client at Connect time.
type Option func(*options)

// WithCodec overrides the payload codec used to encode Call inputs and
// decode Responses. It must match the codec the server was built with.
func WithCodec(c codec.Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithLogger overrides the default zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithOutgoingCapacity overrides the outgoing queue's fixed capacity.
func WithOutgoingCapacity(n int) Option {
	return func(o *options) { o.outgoingCapacity = n }
}
