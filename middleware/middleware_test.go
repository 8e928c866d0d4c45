package middleware

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"dispatchrpc/message"
)

func echoHandler(ctx context.Context, q *message.Query) *message.Response {
	return &message.Response{Message: message.Message{Dispatch: q.Dispatch, MessageData: []byte("ok")}, Ok: true}
}

func slowHandler(ctx context.Context, q *message.Query) *message.Response {
	time.Sleep(200 * time.Millisecond)
	return &message.Response{Message: message.Message{Dispatch: q.Dispatch, MessageData: []byte("ok")}, Ok: true}
}

func TestLogging(t *testing.T) {
	handler := Logging(zap.NewNop())(echoHandler)

	q := &message.Query{Handler: "Arith.Add"}
	resp := handler(context.Background(), q)

	if resp == nil || !resp.Ok {
		t.Fatalf("expected an ok response, got %+v", resp)
	}
}

func TestTimeoutPass(t *testing.T) {
	handler := Timeout(500 * time.Millisecond)(echoHandler)
	resp := handler(context.Background(), &message.Query{Handler: "Arith.Add"})
	if !resp.Ok {
		t.Fatalf("expect no error, got %q", resp.ErrorMsg)
	}
}

func TestTimeoutExceeded(t *testing.T) {
	handler := Timeout(50 * time.Millisecond)(slowHandler)
	resp := handler(context.Background(), &message.Query{Handler: "Arith.Add"})
	if resp.ErrorMsg != "request timed out" {
		t.Fatalf("expect timeout error, got %q", resp.ErrorMsg)
	}
}

func TestRateLimit(t *testing.T) {
	handler := RateLimit(1, 2)(echoHandler)
	q := &message.Query{Handler: "Arith.Add"}

	for i := 0; i < 2; i++ {
		resp := handler(context.Background(), q)
		if !resp.Ok {
			t.Fatalf("request %d should pass, got error: %s", i, resp.ErrorMsg)
		}
	}

	resp := handler(context.Background(), q)
	if resp.ErrorMsg != "rate limit exceeded" {
		t.Fatalf("request 3 should be rate limited, got: %q", resp.ErrorMsg)
	}
}

func TestRetryRecoversFromTransientError(t *testing.T) {
	attempts := 0
	flaky := func(ctx context.Context, q *message.Query) *message.Response {
		attempts++
		if attempts < 3 {
			return &message.Response{Ok: false, ErrorMsg: "timeout"}
		}
		return &message.Response{Ok: true}
	}

	handler := Retry(zap.NewNop(), 5, time.Millisecond)(flaky)
	resp := handler(context.Background(), &message.Query{Handler: "Arith.Add"})
	if !resp.Ok {
		t.Fatalf("expected eventual success, got %+v", resp)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryDoesNotRetryNonTransientError(t *testing.T) {
	attempts := 0
	handler := Retry(zap.NewNop(), 5, time.Millisecond)(func(ctx context.Context, q *message.Query) *message.Response {
		attempts++
		return &message.Response{Ok: false, ErrorMsg: "boom"}
	})

	resp := handler(context.Background(), &message.Query{Handler: "Arith.Add"})
	if resp.Ok || resp.ErrorMsg != "boom" {
		t.Fatalf("expected non-retryable error to pass through, got %+v", resp)
	}
	if attempts != 1 {
		t.Fatalf("expected exactly 1 attempt, got %d", attempts)
	}
}

func TestChain(t *testing.T) {
	chained := Chain(Logging(zap.NewNop()), Timeout(500*time.Millisecond))
	handler := chained(echoHandler)

	resp := handler(context.Background(), &message.Query{Handler: "Arith.Add"})
	if resp == nil || !resp.Ok {
		t.Fatalf("expected success, got %+v", resp)
	}
}
