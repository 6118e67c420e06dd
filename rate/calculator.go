// Package rate turns per-frame elapsed times into an instantaneous frame
// rate and a rolling average over a bounded sample window.
package rate

import (
	"sync"

	"github.com/noxouille/fps-monitor-overlay/ring"
)

const (
	// maxRate caps the instantaneous rate; a near-zero delta would
	// otherwise report an absurd spike.
	maxRate = 1000.0

	// maxHistory caps the sample window regardless of configuration.
	maxHistory = 600

	// defaultHistory is the window used when no size is configured.
	defaultHistory = 120
)

// Calculator converts per-frame elapsed time into frames per second and
// keeps a rolling average over the most recent samples. One goroutine
// feeds Update; the accessors are safe to call from any.
type Calculator struct {
	mu      sync.RWMutex
	store   *ring.Buffer
	current float64
	average float64
}

// New creates a Calculator over a window of historySize samples. Sizes
// above 600 are capped and a non-positive size falls back to 120.
func New(historySize int) *Calculator {
	switch {
	case historySize <= 0:
		historySize = defaultHistory
	case historySize > maxHistory:
		historySize = maxHistory
	}
	return &Calculator{store: ring.New(historySize)}
}

// Update records one frame. delta is the elapsed time in seconds since the
// previous frame; zero and negative values are ignored entirely. The
// instantaneous rate is clamped to at most 1000 and the rolling average is
// recomputed over the full window including the new sample.
func (c *Calculator) Update(delta float64) {
	if delta <= 0 {
		return
	}

	r := 1.0 / delta
	if r > maxRate {
		r = maxRate
	}

	c.store.Push(r)

	samples := c.store.Values()
	var sum float64
	for _, s := range samples {
		sum += s
	}
	avg := r
	if n := len(samples); n > 0 {
		avg = sum / float64(n)
	}

	c.mu.Lock()
	c.current = r
	c.average = avg
	c.mu.Unlock()
}

// Current returns the rate computed from the most recent frame.
func (c *Calculator) Current() float64 {
	c.mu.RLock()
	v := c.current
	c.mu.RUnlock()
	return v
}

// Average returns the rolling average over the sample window.
func (c *Calculator) Average() float64 {
	c.mu.RLock()
	v := c.average
	c.mu.RUnlock()
	return v
}

// Samples returns a copy of the sample window, oldest first.
func (c *Calculator) Samples() []float64 {
	return c.store.Values()
}

// SampleCount returns the number of samples currently in the window.
func (c *Calculator) SampleCount() int {
	return c.store.Len()
}

// WindowSize returns the effective window capacity after clamping.
func (c *Calculator) WindowSize() int {
	return c.store.Cap()
}

// Reset drops all samples and zeroes the current and average rates.
func (c *Calculator) Reset() {
	c.mu.Lock()
	c.store.Clear()
	c.current = 0
	c.average = 0
	c.mu.Unlock()
}
