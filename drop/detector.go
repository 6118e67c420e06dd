// Package drop detects falls of the current rate below the rolling average
// and keeps a debounced, bounded history of the events.
package drop

import (
	"sync"
	"time"

	"github.com/gammazero/deque"
)

const (
	// debounce is the minimum spacing between recorded drops; one stutter
	// burst produces one event, not dozens.
	debounce = 500 * time.Millisecond

	// maxHistory bounds the event history; the oldest entries are evicted.
	maxHistory = 100

	// minThreshold and maxThreshold bound the configurable threshold.
	minThreshold = 5.0
	maxThreshold = 50.0

	// minAverage suppresses detection while the average is too low to be
	// meaningful, such as the first frames after startup.
	minAverage = 10.0
)

// Event is one recorded drop. Magnitude is the relative fall as a
// fraction: (average-current)/average.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Average   float64   `json:"average_fps"`
	Current   float64   `json:"current_fps"`
	Magnitude float64   `json:"magnitude"`
}

// Callback receives an Event synchronously on the goroutine that called
// Update. Only one callback is registered at a time.
type Callback func(Event)

// Detector compares the current rate against the rolling average and
// records an Event when the relative fall reaches the threshold percent.
type Detector struct {
	mu        sync.RWMutex
	threshold float64
	lastDrop  time.Time
	history   deque.Deque[Event]
	callback  Callback
	now       func() time.Time
}

// New creates a Detector. thresholdPercent is clamped into [5, 50].
func New(thresholdPercent float64) *Detector {
	return &Detector{
		threshold: clampThreshold(thresholdPercent),
		now:       time.Now,
	}
}

func clampThreshold(v float64) float64 {
	if v < minThreshold {
		return minThreshold
	}
	if v > maxThreshold {
		return maxThreshold
	}
	return v
}

func isDrop(current, average, threshold float64) bool {
	if average < minAverage {
		return false
	}
	return (average-current)/average*100 >= threshold
}

// IsDrop reports whether current would count as a drop against average. It
// never fires while the average is below 10: right after startup both
// rates hover near zero and every frame would otherwise qualify.
func (d *Detector) IsDrop(current, average float64) bool {
	d.mu.RLock()
	th := d.threshold
	d.mu.RUnlock()
	return isDrop(current, average, th)
}

// Update evaluates one frame. When a drop is detected and at least 500ms
// have passed since the last recorded one, an Event is appended to the
// history, entries beyond 100 are evicted oldest-first, and the registered
// callback runs on the calling goroutine. The callback is invoked outside
// the detector's lock, so it may call back into the detector.
func (d *Detector) Update(current, average float64) {
	d.mu.Lock()

	now := d.now()
	if !isDrop(current, average, d.threshold) || now.Sub(d.lastDrop) < debounce {
		d.mu.Unlock()
		return
	}

	ev := Event{
		Timestamp: now,
		Average:   average,
		Current:   current,
		Magnitude: (average - current) / average,
	}
	d.history.PushBack(ev)
	d.lastDrop = now
	for d.history.Len() > maxHistory {
		d.history.PopFront()
	}
	cb := d.callback
	d.mu.Unlock()

	if cb != nil {
		cb(ev)
	}
}

// SetThreshold updates the threshold percent, clamped into [5, 50].
func (d *Detector) SetThreshold(percent float64) {
	d.mu.Lock()
	d.threshold = clampThreshold(percent)
	d.mu.Unlock()
}

// Threshold returns the current threshold percent.
func (d *Detector) Threshold() float64 {
	d.mu.RLock()
	v := d.threshold
	d.mu.RUnlock()
	return v
}

// SetCallback registers cb, replacing any previous registration. A nil cb
// clears the slot.
func (d *Detector) SetCallback(cb Callback) {
	d.mu.Lock()
	d.callback = cb
	d.mu.Unlock()
}

// Drops returns a copy of the recorded events, oldest first.
func (d *Detector) Drops() []Event {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Event, d.history.Len())
	for i := range out {
		out[i] = d.history.At(i)
	}
	return out
}

// RecentDrops returns the events recorded within the given window, oldest
// first.
func (d *Detector) RecentDrops(window time.Duration) []Event {
	d.mu.RLock()
	defer d.mu.RUnlock()

	cutoff := d.now().Add(-window)
	out := make([]Event, 0)
	for i := 0; i < d.history.Len(); i++ {
		ev := d.history.At(i)
		if !ev.Timestamp.Before(cutoff) {
			out = append(out, ev)
		}
	}
	return out
}

// DropCount returns the number of events currently in the history.
func (d *Detector) DropCount() int {
	d.mu.RLock()
	n := d.history.Len()
	d.mu.RUnlock()
	return n
}

// ClearHistory empties the history. The threshold, the debounce clock and
// the callback are untouched.
func (d *Detector) ClearHistory() {
	d.mu.Lock()
	d.history.Clear()
	d.mu.Unlock()
}

// Reset clears the history and re-arms the debounce. The threshold and
// the callback survive.
func (d *Detector) Reset() {
	d.mu.Lock()
	d.history.Clear()
	d.lastDrop = time.Time{}
	d.mu.Unlock()
}
