package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock drives the interval gate without sleeping.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestPercentileInterpolation(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}

	assert.InDelta(t, 10.0, percentile(sorted, 0), 1e-9)
	assert.InDelta(t, 50.0, percentile(sorted, 1), 1e-9)
	assert.InDelta(t, 30.0, percentile(sorted, 0.5), 1e-9)

	assert.InDelta(t, 15.0, percentile([]float64{10, 20}, 0.5), 1e-9)
}

func TestComputedSnapshot(t *testing.T) {
	tr := New(500 * time.Millisecond)

	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = float64(i + 1) // 1..100
	}
	tr.ForceUpdate(samples)

	s := tr.Stats()
	assert.InDelta(t, 50.5, s.Average, 1e-9)
	assert.InDelta(t, 1.0, s.Min, 1e-9)
	assert.InDelta(t, 100.0, s.Max, 1e-9)
	// p=0.01 over 1..100: idx=0.99, between 1 and 2.
	assert.InDelta(t, 1.99, s.Percentile1, 1e-9)
	// p=0.001: idx=0.099.
	assert.InDelta(t, 1.099, s.Percentile01, 1e-9)

	assert.Equal(t, s.Average, tr.Average())
	assert.Equal(t, s.Min, tr.Min())
	assert.Equal(t, s.Max, tr.Max())
	assert.Equal(t, s.Percentile01, tr.Percentile01())
	assert.Equal(t, s.Percentile1, tr.Percentile1())
}

func TestUpdateIsRateLimited(t *testing.T) {
	clock := newFakeClock()
	tr := New(500 * time.Millisecond)
	tr.now = clock.now

	tr.Update([]float64{10, 20})
	assert.InDelta(t, 15.0, tr.Average(), 1e-9)

	// Within the interval nothing recomputes.
	clock.advance(499 * time.Millisecond)
	tr.Update([]float64{100, 100})
	assert.InDelta(t, 15.0, tr.Average(), 1e-9)

	// At exactly one interval the gate opens.
	clock.advance(1 * time.Millisecond)
	tr.Update([]float64{100, 100})
	assert.InDelta(t, 100.0, tr.Average(), 1e-9)
}

func TestEmptyWindowYieldsZeros(t *testing.T) {
	tr := New(0)
	tr.ForceUpdate(nil)

	assert.Equal(t, Snapshot{}, tr.Stats())
}

func TestSingleSample(t *testing.T) {
	tr := New(time.Second)
	tr.ForceUpdate([]float64{42.5})

	s := tr.Stats()
	assert.Equal(t, 42.5, s.Average)
	assert.Equal(t, 42.5, s.Min)
	assert.Equal(t, 42.5, s.Max)
	assert.Equal(t, 42.5, s.Percentile01)
	assert.Equal(t, 42.5, s.Percentile1)
}

func TestForceUpdateIgnoresGate(t *testing.T) {
	clock := newFakeClock()
	tr := New(time.Minute)
	tr.now = clock.now

	tr.Update([]float64{10})
	tr.ForceUpdate([]float64{70})

	assert.InDelta(t, 70.0, tr.Average(), 1e-9)
}

func TestInputIsNotMutated(t *testing.T) {
	tr := New(time.Second)
	samples := []float64{30, 10, 20}
	tr.ForceUpdate(samples)

	assert.Equal(t, []float64{30, 10, 20}, samples)
}

func TestDefaultInterval(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, New(0).interval)
	assert.Equal(t, 500*time.Millisecond, New(-time.Second).interval)
	assert.Equal(t, time.Second, New(time.Second).interval)
}

func TestResetReopensGate(t *testing.T) {
	clock := newFakeClock()
	tr := New(time.Minute)
	tr.now = clock.now

	tr.Update([]float64{10})
	tr.Reset()
	assert.Equal(t, Snapshot{}, tr.Stats())

	// No clock advance needed after a reset.
	tr.Update([]float64{25})
	assert.InDelta(t, 25.0, tr.Average(), 1e-9)
}
