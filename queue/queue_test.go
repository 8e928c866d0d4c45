package queue

import (
	"testing"
	"time"
)

func TestTryEnqueueRespectsCapacity(t *testing.T) {
	q := New[int](2)

	if !q.TryEnqueue(1) {
		t.Fatal("expected first enqueue to succeed")
	}
	if !q.TryEnqueue(2) {
		t.Fatal("expected second enqueue to succeed")
	}
	if q.TryEnqueue(3) {
		t.Fatal("expected third enqueue to fail: queue is full")
	}
	if q.Count() != 2 {
		t.Fatalf("expected Count() == 2, got %d", q.Count())
	}
}

func TestTryDequeueFIFO(t *testing.T) {
	q := New[int](3)
	q.TryEnqueue(1)
	q.TryEnqueue(2)
	q.TryEnqueue(3)

	for _, want := range []int{1, 2, 3} {
		got, ok := q.TryDequeue(time.Second)
		if !ok {
			t.Fatal("expected an item")
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}
}

func TestTryDequeueTimeout(t *testing.T) {
	q := New[int](1)
	start := time.Now()
	_, ok := q.TryDequeue(50 * time.Millisecond)
	if ok {
		t.Fatal("expected TryDequeue to time out on an empty queue")
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("TryDequeue returned too early after %v", elapsed)
	}
}

func TestCloseWakesBlockedConsumers(t *testing.T) {
	q := New[int](1)
	done := make(chan bool, 1)

	go func() {
		_, ok := q.TryDequeue(0)
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected TryDequeue to return false after Close on an empty queue")
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not wake the blocked consumer")
	}
}

func TestCloseDrainsQueuedItemsFirst(t *testing.T) {
	q := New[int](2)
	q.TryEnqueue(42)
	q.Close()

	v, ok := q.TryDequeue(0)
	if !ok || v != 42 {
		t.Fatalf("expected to drain the queued item after Close, got v=%d ok=%v", v, ok)
	}

	_, ok = q.TryDequeue(0)
	if ok {
		t.Fatal("expected TryDequeue to return false once drained")
	}
}
