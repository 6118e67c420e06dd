// Package monitor wires the rate calculator, the statistics tracker and
// the drop detector into one per-frame pipeline.
package monitor

import (
	"time"

	"github.com/noxouille/fps-monitor-overlay/drop"
	"github.com/noxouille/fps-monitor-overlay/rate"
	"github.com/noxouille/fps-monitor-overlay/stats"
)

// Config carries the tunables for one monitoring session. Zero values fall
// back to the component defaults (120 samples, 500ms, threshold floor).
type Config struct {
	HistorySize   int
	StatsInterval time.Duration
	DropThreshold float64
}

// Monitor owns one calculator, tracker and detector and applies the frame
// pipeline in a fixed order. Update must be fed from a single goroutine;
// the accessors are safe from any.
type Monitor struct {
	calc     *rate.Calculator
	tracker  *stats.Tracker
	detector *drop.Detector
	started  time.Time
}

// New creates a Monitor from cfg.
func New(cfg Config) *Monitor {
	return &Monitor{
		calc:     rate.New(cfg.HistorySize),
		tracker:  stats.New(cfg.StatsInterval),
		detector: drop.New(cfg.DropThreshold),
		started:  time.Now(),
	}
}

// Update feeds one frame through the pipeline: the rate first, then the
// statistics over the refreshed window, then drop detection against the
// refreshed average.
func (m *Monitor) Update(delta float64) {
	m.calc.Update(delta)
	m.tracker.Update(m.calc.Samples())
	m.detector.Update(m.calc.Current(), m.calc.Average())
}

// Calculator returns the rate calculator.
func (m *Monitor) Calculator() *rate.Calculator { return m.calc }

// Tracker returns the statistics tracker.
func (m *Monitor) Tracker() *stats.Tracker { return m.tracker }

// Detector returns the drop detector.
func (m *Monitor) Detector() *drop.Detector { return m.detector }

// Snapshot is a composite read of the session for transports.
type Snapshot struct {
	Timestamp   time.Time      `json:"timestamp"`
	Current     float64        `json:"current_fps"`
	Average     float64        `json:"average_fps"`
	SampleCount int            `json:"sample_count"`
	Stats       stats.Snapshot `json:"stats"`
	DropCount   int            `json:"drop_count"`
}

// Snapshot assembles the composite read. Each component read is
// individually consistent; the composite is not atomic across components.
func (m *Monitor) Snapshot() Snapshot {
	return Snapshot{
		Timestamp:   time.Now(),
		Current:     m.calc.Current(),
		Average:     m.calc.Average(),
		SampleCount: m.calc.SampleCount(),
		Stats:       m.tracker.Stats(),
		DropCount:   m.detector.DropCount(),
	}
}

// Uptime returns the time since the session was created.
func (m *Monitor) Uptime() time.Duration {
	return time.Since(m.started)
}

// Reset clears all three components.
func (m *Monitor) Reset() {
	m.calc.Reset()
	m.tracker.Reset()
	m.detector.Reset()
}
