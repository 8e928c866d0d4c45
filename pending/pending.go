// Package pending implements PendingRequests, the client-side
// dispatch-correlation table that turns dispatchrpc's asynchronous wire
// protocol into a synchronous call with a hard timeout.
//
// The design combines two teacher patterns: BX-D-mini-RPC's
// transport.ClientTransport, which keys a sync.Map of response channels by
// sequence number and closes them all when the connection breaks, and
// Lubby-ch-rpc's Client, which keeps an explicit pending map guarded by a
// mutex and a Call type with a single-buffered Done channel. Here the slot
// is the one-shot cell called out in spec.md's data model.
package pending

import (
	"sync"
	"time"

	"dispatchrpc/message"
)

// HardQueryTimeout is the single global deadline every Get respects.
const HardQueryTimeout = 5 * time.Second

// Slot is a one-shot cell a caller waits on for the Response matching its
// dispatch id.
type Slot struct {
	started time.Time
	done    chan *message.Response
}

// Requests maps dispatch id to Slot. All methods are safe for concurrent
// use.
type Requests struct {
	mu    sync.Mutex
	slots map[int32]*Slot
}

// New creates an empty PendingRequests table.
func New() *Requests {
	return &Requests{slots: make(map[int32]*Slot)}
}

// Add creates a new Slot keyed by q.Dispatch, capturing q.Started as the
// slot's timer origin. Re-Adding an id already present overwrites the old
// slot; the transport guarantees dispatch ids are unique per Client so this
// only happens if a caller misuses the table.
func (r *Requests) Add(q *message.Query) *Slot {
	slot := &Slot{
		started: q.Started,
		done:    make(chan *message.Response, 1),
	}
	r.mu.Lock()
	r.slots[q.Dispatch] = slot
	r.mu.Unlock()
	return slot
}

// Set stores resp in the slot for dispatch, if one is present, and signals
// completion. It is a silent no-op when no slot exists — the Response
// arrived after the caller already timed out, or for a dispatch this table
// never issued.
func (r *Requests) Set(dispatch int32, resp *message.Response) {
	r.mu.Lock()
	slot, ok := r.slots[dispatch]
	r.mu.Unlock()
	if !ok {
		return
	}
	select {
	case slot.done <- resp:
	default:
	}
}

// Get waits up to HardQueryTimeout-elapsed for the Response matching
// dispatch, removing the slot in every case (success, error, or timeout).
// If elapsed already exceeds HardQueryTimeout it returns a Timeout Response
// immediately without blocking.
func (r *Requests) Get(dispatch int32) *message.Response {
	r.mu.Lock()
	slot, ok := r.slots[dispatch]
	r.mu.Unlock()
	if !ok {
		return message.Timeout(dispatch)
	}

	remaining := remainingTime(slot.started)
	if remaining <= 0 {
		r.Delete(dispatch)
		return message.Timeout(dispatch)
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case resp := <-slot.done:
		r.Delete(dispatch)
		return resp
	case <-timer.C:
		r.Delete(dispatch)
		return message.Timeout(dispatch)
	}
}

// Delete removes the slot for dispatch, if any. It is idempotent.
func (r *Requests) Delete(dispatch int32) {
	r.mu.Lock()
	delete(r.slots, dispatch)
	r.mu.Unlock()
}

// remainingTime clamps HardQueryTimeout-elapsed into [0, HardQueryTimeout].
func remainingTime(started time.Time) time.Duration {
	elapsed := time.Since(started)
	remaining := HardQueryTimeout - elapsed
	if remaining < 0 {
		return 0
	}
	if remaining > HardQueryTimeout {
		return HardQueryTimeout
	}
	return remaining
}
