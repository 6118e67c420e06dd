// Package notify fans drop events out to the configured sinks.
package notify

import (
	"github.com/noxouille/fps-monitor-overlay/drop"
)

// Sink consumes drop events. Notify runs on the ingestion goroutine and
// must not block.
type Sink interface {
	Notify(e drop.Event)
}

// Fanout forwards each event to every sink in registration order. It
// implements Sink itself, so the detector's single callback slot drives
// any number of subscribers.
type Fanout struct {
	sinks []Sink
}

// NewFanout creates a Fanout over sinks.
func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

// Add appends a sink. Wire all sinks before the pipeline starts; Add is
// not safe against a concurrent Notify.
func (f *Fanout) Add(s Sink) {
	f.sinks = append(f.sinks, s)
}

// Notify forwards e to every sink in order.
func (f *Fanout) Notify(e drop.Event) {
	for _, s := range f.sinks {
		s.Notify(e)
	}
}
