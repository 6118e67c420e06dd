package source

import "time"

// DeltaTimer measures the elapsed time between consecutive frames on the
// monotonic clock.
type DeltaTimer struct {
	start time.Time
	last  time.Time
}

// NewDeltaTimer creates a timer with both marks set to now.
func NewDeltaTimer() *DeltaTimer {
	now := time.Now()
	return &DeltaTimer{start: now, last: now}
}

// Delta returns the seconds elapsed since the previous Delta call (or
// since construction) and advances the mark.
func (t *DeltaTimer) Delta() float64 {
	now := time.Now()
	d := now.Sub(t.last).Seconds()
	t.last = now
	return d
}

// Elapsed returns the seconds since construction or the last Restart.
func (t *DeltaTimer) Elapsed() float64 {
	return time.Since(t.start).Seconds()
}

// Restart resets both marks to now.
func (t *DeltaTimer) Restart() {
	now := time.Now()
	t.start = now
	t.last = now
}
