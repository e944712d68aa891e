package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeNowOnlyMovesOnAdvance(t *testing.T) {
	c := Fake(epoch)
	if !c.Now().Equal(epoch) {
		t.Fatalf("expected %v, got %v", epoch, c.Now())
	}
	c.Advance(1500 * time.Millisecond)
	if got := Millis(epoch, c.Now()); got != 1500 {
		t.Fatalf("expected 1500ms elapsed, got %d", got)
	}
}

func TestFakeAfterFiresAtDeadline(t *testing.T) {
	c := Fake(epoch)
	ch := c.After(time.Second)

	c.Advance(999 * time.Millisecond)
	select {
	case <-ch:
		t.Fatal("fired before deadline")
	default:
	}

	c.Advance(time.Millisecond)
	select {
	case <-ch:
	default:
		t.Fatal("expected After to fire at deadline")
	}
}

func TestFakeTickerDropsOverflowingTicks(t *testing.T) {
	c := Fake(epoch)
	tk := c.NewTicker(10 * time.Millisecond)
	defer tk.Stop()

	c.Advance(50 * time.Millisecond)
	<-tk.C
	select {
	case <-tk.C:
		t.Fatal("expected a single buffered tick")
	default:
	}

	c.Advance(10 * time.Millisecond)
	select {
	case <-tk.C:
	default:
		t.Fatal("expected ticker to keep firing")
	}
}

func TestFakeTickerStop(t *testing.T) {
	c := Fake(epoch)
	tk := c.NewTicker(time.Millisecond)
	tk.Stop()
	c.Advance(time.Second)
	select {
	case <-tk.C:
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestWaitForTimersSeesTickerFromGoroutine(t *testing.T) {
	c := Fake(epoch)
	done := make(chan struct{})
	go func() {
		<-c.After(time.Second)
		close(done)
	}()
	c.WaitForTimers(1)
	c.Advance(time.Second)
	<-done
}

func TestMillisClampsNegative(t *testing.T) {
	if got := Millis(epoch, epoch.Add(-time.Second)); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
