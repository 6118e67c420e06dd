package notify

import (
	"github.com/rs/zerolog"

	"github.com/noxouille/fps-monitor-overlay/drop"
)

// LogSink writes each drop as a structured warning.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

// Notify logs e.
func (s *LogSink) Notify(e drop.Event) {
	s.log.Warn().
		Float64("current_fps", e.Current).
		Float64("average_fps", e.Average).
		Float64("drop_pct", e.Magnitude*100).
		Msg("FPS drop detected")
}
