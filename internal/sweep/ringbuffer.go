package sweep

import (
	"errors"
	"fmt"
	"sync"
)

// ErrCapacity is returned when a ring capacity is not a positive power of two.
var ErrCapacity = errors.New("ring capacity must be a positive power of two")

// RingBuffer is a bounded, thread-safe FIFO of timed points.
//
// When producers outrun the consumer the oldest unread point is
// overwritten. That loss is the overrun policy, not an error: Overruns
// counts it and nothing else reports it.
type RingBuffer struct {
	mu       sync.Mutex
	slots    []TimedPoint
	mask     uint64
	seq      uint64 // total inserts; slot of the next insert is seq & mask
	count    int    // unread points, <= len(slots)
	overruns uint64
}

// NewRingBuffer creates a ring buffer holding n points.
func NewRingBuffer(n int) (*RingBuffer, error) {
	if n <= 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrCapacity, n)
	}
	return &RingBuffer{
		slots: make([]TimedPoint, n),
		mask:  uint64(n - 1),
	}, nil
}

// InsertAtTail appends p, overwriting the oldest unread point if full.
func (rb *RingBuffer) InsertAtTail(p TimedPoint) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.slots[rb.seq&rb.mask] = p
	rb.seq++
	if rb.count == len(rb.slots) {
		rb.overruns++
		return
	}
	rb.count++
}

// PopLatest drains every unread point in insertion order. The returned
// slice belongs to the caller. It is nil when nothing was buffered.
func (rb *RingBuffer) PopLatest() []TimedPoint {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.count == 0 {
		return nil
	}
	out := make([]TimedPoint, rb.count)
	start := rb.seq - uint64(rb.count)
	for i := range out {
		out[i] = rb.slots[(start+uint64(i))&rb.mask]
	}
	rb.count = 0
	return out
}

// Latest returns the most recently inserted point without removing it.
// ok is false if nothing has been inserted since creation or Reset.
func (rb *RingBuffer) Latest() (p TimedPoint, ok bool) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.seq == 0 {
		return TimedPoint{}, false
	}
	return rb.slots[(rb.seq-1)&rb.mask], true
}

// Snapshot copies the whole backing array, stale slots included. Slot
// i holds the point inserted at some sequence s with s & (Cap()-1) == i.
func (rb *RingBuffer) Snapshot() []TimedPoint {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	out := make([]TimedPoint, len(rb.slots))
	copy(out, rb.slots)
	return out
}

// Len returns the number of unread points.
func (rb *RingBuffer) Len() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

// Cap returns the fixed capacity.
func (rb *RingBuffer) Cap() int { return len(rb.slots) }

// Overruns returns how many unread points have been overwritten.
func (rb *RingBuffer) Overruns() uint64 {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.overruns
}

// Reset drops unread points and forgets the latest insert.
func (rb *RingBuffer) Reset() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.seq = 0
	rb.count = 0
	rb.overruns = 0
}
