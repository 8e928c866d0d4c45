package pending

import (
	"testing"
	"time"

	"dispatchrpc/message"
)

func TestAddSetGet(t *testing.T) {
	r := New()
	q := &message.Query{Message: message.Message{Dispatch: 1}, Started: time.Now()}
	r.Add(q)

	want := &message.Response{Message: message.Message{Dispatch: 1}, Ok: true}
	r.Set(1, want)

	got := r.Get(1)
	if got != want {
		t.Fatalf("expected the exact Response instance back, got %+v", got)
	}
}

func TestGetRemovesSlot(t *testing.T) {
	r := New()
	q := &message.Query{Message: message.Message{Dispatch: 2}, Started: time.Now()}
	r.Add(q)
	r.Set(2, &message.Response{Message: message.Message{Dispatch: 2}, Ok: true})
	r.Get(2)

	if _, ok := r.slots[2]; ok {
		t.Fatal("expected the slot to be removed after Get completes")
	}
}

func TestSetWithoutSlotIsNoop(t *testing.T) {
	r := New()
	// No panic, no leak: Set for a dispatch id nobody Added.
	r.Set(99, &message.Response{Message: message.Message{Dispatch: 99}})
	if len(r.slots) != 0 {
		t.Fatalf("expected no slots, got %d", len(r.slots))
	}
}

func TestGetWithoutSlotIsImmediateTimeout(t *testing.T) {
	r := New()
	start := time.Now()
	resp := r.Get(7)
	if time.Since(start) > 50*time.Millisecond {
		t.Fatal("Get for an unknown dispatch should return immediately")
	}
	if resp.Ok || resp.ErrorMsg != "timeout" {
		t.Fatalf("expected a timeout Response, got %+v", resp)
	}
	if resp.Dispatch != 7 {
		t.Fatalf("expected dispatch 7 preserved, got %d", resp.Dispatch)
	}
}

func TestGetTimesOutWhenNeverSet(t *testing.T) {
	r := New()
	q := &message.Query{Message: message.Message{Dispatch: 3}, Started: time.Now()}
	r.Add(q)

	// Force the timeout window to be tiny by backdating Started.
	r.mu.Lock()
	r.slots[3].started = time.Now().Add(-HardQueryTimeout + 20*time.Millisecond)
	r.mu.Unlock()

	start := time.Now()
	resp := r.Get(3)
	elapsed := time.Since(start)

	if resp.Ok || resp.ErrorMsg != "timeout" {
		t.Fatalf("expected timeout Response, got %+v", resp)
	}
	if resp.Dispatch != 3 {
		t.Fatalf("expected dispatch preserved, got %d", resp.Dispatch)
	}
	if elapsed > 200*time.Millisecond {
		t.Fatalf("timeout took too long: %v", elapsed)
	}
}

func TestGetPastDeadlineReturnsImmediately(t *testing.T) {
	r := New()
	q := &message.Query{Message: message.Message{Dispatch: 4}, Started: time.Now().Add(-2 * HardQueryTimeout)}
	r.Add(q)

	start := time.Now()
	resp := r.Get(4)
	if time.Since(start) > 50*time.Millisecond {
		t.Fatal("Get past the deadline should not block")
	}
	if resp.ErrorMsg != "timeout" {
		t.Fatalf("expected timeout, got %+v", resp)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	r := New()
	r.Delete(123)
	r.Delete(123)
}
