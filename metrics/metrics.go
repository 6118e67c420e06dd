// Package metrics exposes the pipeline state to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/noxouille/fps-monitor-overlay/drop"
	"github.com/noxouille/fps-monitor-overlay/monitor"
)

var (
	currentFPS = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fpsmon",
		Name:      "current_fps",
		Help:      "Instantaneous frame rate from the most recent frame.",
	})

	averageFPS = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fpsmon",
		Name:      "average_fps",
		Help:      "Rolling average frame rate over the sample window.",
	})

	minFPS = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fpsmon",
		Name:      "min_fps",
		Help:      "Minimum frame rate in the last statistics round.",
	})

	maxFPS = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fpsmon",
		Name:      "max_fps",
		Help:      "Maximum frame rate in the last statistics round.",
	})

	p1LowFPS = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fpsmon",
		Name:      "p1_low_fps",
		Help:      "1% low frame rate in the last statistics round.",
	})

	p01LowFPS = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fpsmon",
		Name:      "p0_1_low_fps",
		Help:      "0.1% low frame rate in the last statistics round.",
	})

	sampleCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fpsmon",
		Name:      "sample_count",
		Help:      "Number of samples currently in the window.",
	})

	dropsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fpsmon",
		Name:      "drops_total",
		Help:      "Total number of recorded frame rate drops.",
	})

	lastDropPct = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fpsmon",
		Name:      "last_drop_pct",
		Help:      "Magnitude of the most recent drop, in percent.",
	})
)

// Publish pushes a snapshot into the gauges.
func Publish(s monitor.Snapshot) {
	currentFPS.Set(s.Current)
	averageFPS.Set(s.Average)
	minFPS.Set(s.Stats.Min)
	maxFPS.Set(s.Stats.Max)
	p1LowFPS.Set(s.Stats.Percentile1)
	p01LowFPS.Set(s.Stats.Percentile01)
	sampleCount.Set(float64(s.SampleCount))
}

// DropSink counts drop events; it satisfies the notify sink contract.
type DropSink struct{}

// Notify records e.
func (DropSink) Notify(e drop.Event) {
	dropsTotal.Inc()
	lastDropPct.Set(e.Magnitude * 100)
}
