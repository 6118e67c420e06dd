// Package stats computes distribution statistics over a sample window at a
// bounded cadence.
package stats

import (
	"math"
	"sort"
	"sync"
	"time"
)

const defaultInterval = 500 * time.Millisecond

// Snapshot holds one round of computed statistics. Percentile1 and
// Percentile01 are the "1% low" and "0.1% low" rates from frame time
// analysis: the values at the 1st and 0.1th percentile of the window.
type Snapshot struct {
	Average      float64 `json:"average"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Percentile01 float64 `json:"p0_1"`
	Percentile1  float64 `json:"p1"`
}

// Tracker recomputes statistics at most once per interval. Sorting the
// window costs far more than a frame update, so callers feed every frame
// and the tracker decides when to do the work.
type Tracker struct {
	mu         sync.RWMutex
	snapshot   Snapshot
	lastUpdate time.Time
	interval   time.Duration
	now        func() time.Time
}

// New creates a Tracker. A non-positive interval falls back to 500ms.
func New(interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Tracker{interval: interval, now: time.Now}
}

// Update recomputes statistics when at least one interval has passed since
// the previous computation; otherwise it returns after a single time
// comparison. The input slice is never mutated.
func (t *Tracker) Update(samples []float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.now().Sub(t.lastUpdate) < t.interval {
		return
	}
	t.compute(samples)
}

// ForceUpdate recomputes statistics immediately, ignoring the interval.
func (t *Tracker) ForceUpdate(samples []float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.compute(samples)
}

// compute expects t.mu to be held.
func (t *Tracker) compute(samples []float64) {
	t.lastUpdate = t.now()

	if len(samples) == 0 {
		t.snapshot = Snapshot{}
		return
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	t.snapshot = Snapshot{
		Average:      sum / float64(len(sorted)),
		Min:          sorted[0],
		Max:          sorted[len(sorted)-1],
		Percentile01: percentile(sorted, 0.001),
		Percentile1:  percentile(sorted, 0.01),
	}
}

// percentile interpolates linearly between the closest ranks of an already
// sorted slice. p is a fraction in [0, 1].
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	idx := p * float64(len(sorted)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo < 0 {
		lo = 0
	}
	if hi >= len(sorted) {
		hi = len(sorted) - 1
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Stats returns a copy of the most recently computed snapshot.
func (t *Tracker) Stats() Snapshot {
	t.mu.RLock()
	s := t.snapshot
	t.mu.RUnlock()
	return s
}

// Average returns the mean from the last computed snapshot.
func (t *Tracker) Average() float64 { return t.Stats().Average }

// Min returns the minimum from the last computed snapshot.
func (t *Tracker) Min() float64 { return t.Stats().Min }

// Max returns the maximum from the last computed snapshot.
func (t *Tracker) Max() float64 { return t.Stats().Max }

// Percentile01 returns the 0.1% low from the last computed snapshot.
func (t *Tracker) Percentile01() float64 { return t.Stats().Percentile01 }

// Percentile1 returns the 1% low from the last computed snapshot.
func (t *Tracker) Percentile1() float64 { return t.Stats().Percentile1 }

// Reset clears the snapshot and the interval gate, so the next Update
// computes immediately.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.snapshot = Snapshot{}
	t.lastUpdate = time.Time{}
	t.mu.Unlock()
}
