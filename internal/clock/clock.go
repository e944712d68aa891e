// Package clock abstracts wall time so producers and the chart can be
// driven by synthetic timestamps in tests.
package clock

import "time"

// Clock is the time source injected into producers and charts.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
	NewTicker(d time.Duration) *Ticker
}

// Ticker delivers ticks on C. C has capacity 1; late ticks are dropped.
type Ticker struct {
	C <-chan time.Time

	stop func()
}

// Stop turns off the ticker. C is not closed.
func (t *Ticker) Stop() { t.stop() }

// Millis returns the whole milliseconds elapsed from start to now,
// clamped at zero.
func Millis(start, now time.Time) uint64 {
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return uint64(d / time.Millisecond)
}
