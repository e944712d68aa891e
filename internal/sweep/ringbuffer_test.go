package sweep

import (
	"errors"
	"sync"
	"testing"
)

func tp(ts uint64) TimedPoint {
	return TimedPoint{Value: ScreenPoint{X: float32(ts), Y: 1, Z: 0}, TimestampMs: ts}
}

func TestNewRingBufferRejectsNonPowerOfTwo(t *testing.T) {
	for _, n := range []int{0, -4, 3, 6, 100} {
		if _, err := NewRingBuffer(n); !errors.Is(err, ErrCapacity) {
			t.Fatalf("expected ErrCapacity for %d, got %v", n, err)
		}
	}
	for _, n := range []int{1, 2, 64, 4096} {
		if _, err := NewRingBuffer(n); err != nil {
			t.Fatalf("expected capacity %d to be accepted, got %v", n, err)
		}
	}
}

func TestPopLatestPreservesInsertionOrder(t *testing.T) {
	rb, _ := NewRingBuffer(8)
	for i := range 8 {
		rb.InsertAtTail(tp(uint64(i * 10)))
	}

	got := rb.PopLatest()
	if len(got) != 8 {
		t.Fatalf("expected 8 points, got %d", len(got))
	}
	for i, p := range got {
		if p != tp(uint64(i*10)) {
			t.Fatalf("point %d: expected %+v, got %+v", i, tp(uint64(i*10)), p)
		}
	}
	if rb.Len() != 0 {
		t.Fatalf("expected empty ring after pop, got %d", rb.Len())
	}
	if again := rb.PopLatest(); again != nil {
		t.Fatalf("expected nil from empty pop, got %v", again)
	}
}

func TestPopLatestAcrossWrappedSlots(t *testing.T) {
	rb, _ := NewRingBuffer(4)
	for i := range 3 {
		rb.InsertAtTail(tp(uint64(i)))
	}
	rb.PopLatest()
	for i := 3; i < 7; i++ {
		rb.InsertAtTail(tp(uint64(i)))
	}

	got := rb.PopLatest()
	if len(got) != 4 {
		t.Fatalf("expected 4 points, got %d", len(got))
	}
	for i, p := range got {
		if p.TimestampMs != uint64(i+3) {
			t.Fatalf("point %d: expected ts %d, got %d", i, i+3, p.TimestampMs)
		}
	}
}

func TestInsertAtTailOverwritesOldestWhenFull(t *testing.T) {
	rb, _ := NewRingBuffer(4)
	for i := range 6 {
		rb.InsertAtTail(tp(uint64(i)))
	}
	if rb.Len() != 4 {
		t.Fatalf("expected len capped at 4, got %d", rb.Len())
	}
	if rb.Overruns() != 2 {
		t.Fatalf("expected 2 overruns, got %d", rb.Overruns())
	}

	got := rb.PopLatest()
	want := []uint64{2, 3, 4, 5}
	for i, p := range got {
		if p.TimestampMs != want[i] {
			t.Fatalf("point %d: expected ts %d, got %d", i, want[i], p.TimestampMs)
		}
	}
}

func TestLatestPeeksWithoutRemoving(t *testing.T) {
	rb, _ := NewRingBuffer(4)
	if _, ok := rb.Latest(); ok {
		t.Fatal("expected no latest point on a fresh ring")
	}

	rb.InsertAtTail(tp(5))
	rb.InsertAtTail(tp(9))
	p, ok := rb.Latest()
	if !ok || p.TimestampMs != 9 {
		t.Fatalf("expected latest ts 9, got %+v ok=%v", p, ok)
	}
	if rb.Len() != 2 {
		t.Fatalf("expected peek to leave 2 points, got %d", rb.Len())
	}

	rb.PopLatest()
	if p, ok := rb.Latest(); !ok || p.TimestampMs != 9 {
		t.Fatalf("expected latest to survive a drain, got %+v ok=%v", p, ok)
	}

	rb.Reset()
	if _, ok := rb.Latest(); ok {
		t.Fatal("expected reset to forget the latest point")
	}
}

func TestSnapshotIncludesStaleSlots(t *testing.T) {
	rb, _ := NewRingBuffer(4)
	for i := range 5 {
		rb.InsertAtTail(tp(uint64(i + 1)))
	}
	rb.PopLatest()

	snap := rb.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("expected full backing array, got %d slots", len(snap))
	}
	want := []uint64{5, 2, 3, 4}
	for i, p := range snap {
		if p.TimestampMs != want[i] {
			t.Fatalf("slot %d: expected ts %d, got %d", i, want[i], p.TimestampMs)
		}
	}

	snap[0].TimestampMs = 99
	if rb.Snapshot()[0].TimestampMs != 5 {
		t.Fatal("expected snapshot to be a copy")
	}
}

func TestConcurrentProducersLoseNothingBelowCapacity(t *testing.T) {
	rb, _ := NewRingBuffer(1024)
	var wg sync.WaitGroup
	for g := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				rb.InsertAtTail(tp(uint64(g*1000 + i)))
			}
		}()
	}
	wg.Wait()

	got := rb.PopLatest()
	if len(got) != 800 {
		t.Fatalf("expected 800 points, got %d", len(got))
	}
	last := map[uint64]int64{}
	for _, p := range got {
		g := p.TimestampMs / 1000
		prev, seen := last[g]
		if seen && int64(p.TimestampMs) <= prev {
			t.Fatalf("producer %d reordered: %d after %d", g, p.TimestampMs, prev)
		}
		last[g] = int64(p.TimestampMs)
	}
	if rb.Overruns() != 0 {
		t.Fatalf("expected no overruns, got %d", rb.Overruns())
	}
}
