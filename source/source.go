// Package source feeds per-frame elapsed times into the pipeline.
package source

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultTargetRate = 60

// Source produces frame deltas and hands them to emit, in seconds.
type Source interface {
	Run(ctx context.Context, emit func(delta float64)) error
}

// Loop is a self-clocked source: it ticks at a target rate and emits the
// measured time between ticks. The measured cadence carries the
// scheduler's jitter, which is exactly the signal a pacing monitor wants
// to see.
type Loop struct {
	interval time.Duration
	log      zerolog.Logger
}

// NewLoop creates a Loop ticking at targetRate frames per second. A
// non-positive rate falls back to 60.
func NewLoop(targetRate int, log zerolog.Logger) *Loop {
	if targetRate <= 0 {
		targetRate = defaultTargetRate
	}
	return &Loop{interval: time.Second / time.Duration(targetRate), log: log}
}

// Run emits until ctx is cancelled and then returns the context error.
func (l *Loop) Run(ctx context.Context, emit func(delta float64)) error {
	l.log.Info().Dur("interval", l.interval).Msg("Starting self-clocked frame loop")

	timer := NewDeltaTimer()
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			emit(timer.Delta())
		}
	}
}

// Reader parses frame times in milliseconds, one value per line, from an
// external trace such as a capture piped over stdin. Blank lines and lines
// starting with '#' are skipped; unparsable lines are logged and skipped.
type Reader struct {
	r   io.Reader
	log zerolog.Logger
}

// NewReader wraps r.
func NewReader(r io.Reader, log zerolog.Logger) *Reader {
	return &Reader{r: r, log: log}
}

// Run emits until the trace ends or ctx is cancelled. A clean end of
// input returns nil.
func (r *Reader) Run(ctx context.Context, emit func(delta float64)) error {
	r.log.Info().Msg("Reading frame times from trace input")

	sc := bufio.NewScanner(r.r)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		ms, err := strconv.ParseFloat(line, 64)
		if err != nil {
			r.log.Debug().Str("line", line).Msg("Skipping unparsable frame time")
			continue
		}
		emit(ms / 1000.0)
	}
	return sc.Err()
}
