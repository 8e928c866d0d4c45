package server

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"dispatchrpc/message"
	"dispatchrpc/middleware"
	"dispatchrpc/rpcerr"
)

// wrappedHandler is the registry's internal, uniform handler shape: every
// user handler — regardless of its declared argument and reply types — is
// adapted down to this signature by wrapHandler.
type wrappedHandler func(q *message.Query) *message.Response

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Register adds fn to the registry under name. fn must have the shape
// func(In) (Out, error) — In and Out may be any type, pointer or value,
// exactly as declared by the handler author; wrapHandler uses reflection to
// deserialize the Query's payload into a fresh In and to serialize the
// returned Out into the Response, mirroring how BX-D-mini-RPC's
// server/service.go builds an *Args/*Reply invocation from
// reflect.Method.Type. Register fails with ErrHandlerAlreadyRegistered if
// name is taken, ErrReservedName if name starts with "_" (built-ins are
// pre-registered and bypass this check), and ErrAfterStart once Start has
// frozen the registry.
func (s *Server) Register(name string, fn any) error {
	if s.started.Load() {
		return rpcerr.ErrAfterStart
	}
	if strings.HasPrefix(name, "_") {
		return rpcerr.ErrReservedName
	}
	return s.registerAny(name, fn)
}

func (s *Server) registerAny(name string, fn any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.handlers[name]; exists {
		return rpcerr.ErrHandlerAlreadyRegistered
	}

	wrapped, err := wrapHandler(s.codec, fn)
	if err != nil {
		return err
	}
	s.handlers[name] = wrapped
	return nil
}

// registerBuiltin bypasses the reserved-name check; only NewServer calls it.
func (s *Server) registerBuiltin(name string, fn any) {
	if err := s.registerAny(name, fn); err != nil {
		panic(fmt.Sprintf("server: failed to register built-in %q: %v", name, err))
	}
}

// wrapHandler validates fn's signature and returns a wrappedHandler that
// decodes the Query payload, invokes fn, and encodes the result.
func wrapHandler(c interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}, fn any) (wrappedHandler, error) {
	fnVal := reflect.ValueOf(fn)
	fnType := fnVal.Type()

	if fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("server: handler must be a function, got %s", fnType.Kind())
	}
	if fnType.NumIn() != 1 || fnType.NumOut() != 2 {
		return nil, fmt.Errorf("server: handler must have signature func(In) (Out, error)")
	}
	if !fnType.Out(1).Implements(errorType) {
		return nil, fmt.Errorf("server: handler's second return value must be error")
	}

	argType := fnType.In(0)
	argIsPtr := argType.Kind() == reflect.Ptr
	argElemType := argType
	if argIsPtr {
		argElemType = argType.Elem()
	}

	return func(q *message.Query) *message.Response {
		argPtr := reflect.New(argElemType)
		if len(q.MessageData) > 0 {
			if err := c.Decode(q.MessageData, argPtr.Interface()); err != nil {
				return failure(q.Dispatch, err.Error())
			}
		}

		callArg := argPtr
		if !argIsPtr {
			callArg = argPtr.Elem()
		}

		results := fnVal.Call([]reflect.Value{callArg})
		if errVal := results[1]; !errVal.IsNil() {
			return failure(q.Dispatch, errVal.Interface().(error).Error())
		}

		encoded, err := c.Encode(results[0].Interface())
		if err != nil {
			return failure(q.Dispatch, err.Error())
		}

		return &message.Response{
			Message: message.Message{Dispatch: q.Dispatch, MessageData: encoded},
			Ok:      true,
		}
	}, nil
}

func failure(dispatch int32, errMsg string) *message.Response {
	return &message.Response{
		Message:  message.Message{Dispatch: dispatch},
		Ok:       false,
		ErrorMsg: errMsg,
	}
}

// registerBuiltins pre-registers "_ping" and "_getStats".
func (s *Server) registerBuiltins() {
	s.registerBuiltin("_ping", func(in int32) (int32, error) {
		return in, nil
	})
	s.registerBuiltin("_getStats", func(_ bool) (ServerStats, error) {
		return s.Stats(), nil
	})
}

// dispatch looks up q.Handler, runs it (through the middleware chain, if
// any) and returns its Response. Handler panics are recovered and converted
// to a failure Response — a worker must never die from a bad handler.
func (s *Server) dispatch(q *message.Query) (resp *message.Response) {
	s.mu.RLock()
	handler, ok := s.handlers[q.Handler]
	s.mu.RUnlock()

	if !ok {
		return failure(q.Dispatch, fmt.Sprintf("unknown handler: %s", q.Handler))
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panicked", zap.String("handler", q.Handler), zap.Any("recover", r))
			resp = failure(q.Dispatch, fmt.Sprintf("handler panic: %v", r))
		}
	}()

	final := middleware.Chain(s.middlewares...)(func(_ context.Context, q *message.Query) *message.Response {
		return handler(q)
	})
	return final(context.Background(), q)
}
