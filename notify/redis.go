package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noxouille/fps-monitor-overlay/drop"
)

// RedisSink publishes each drop as JSON on a Redis channel for external
// consumers. Pure pub/sub: nothing is stored. Publishing runs on a worker
// goroutine so Notify never blocks the frame pipeline.
type RedisSink struct {
	client  *redis.Client
	channel string
	log     zerolog.Logger
	queue   chan drop.Event
	done    chan struct{}
}

// NewRedisSink creates a RedisSink publishing on channel and starts its
// worker. The client stays owned by the caller.
func NewRedisSink(client *redis.Client, channel string, log zerolog.Logger) *RedisSink {
	s := &RedisSink{
		client:  client,
		channel: channel,
		log:     log,
		queue:   make(chan drop.Event, 100),
		done:    make(chan struct{}),
	}
	go s.worker()
	return s
}

// Notify enqueues e without blocking; when the queue is full the event is
// discarded.
func (s *RedisSink) Notify(e drop.Event) {
	select {
	case s.queue <- e:
	default:
		s.log.Debug().Msg("Redis queue full, dropping event")
	}
}

// Close stops the worker. Events still queued may be discarded.
func (s *RedisSink) Close() {
	close(s.done)
}

func (s *RedisSink) worker() {
	for {
		select {
		case e := <-s.queue:
			s.publish(e)
		case <-s.done:
			return
		}
	}
}

func (s *RedisSink) publish(e drop.Event) {
	body, err := json.Marshal(e)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode drop event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.client.Publish(ctx, s.channel, body).Err(); err != nil {
		s.log.Error().Err(err).Str("channel", s.channel).Msg("Failed to publish drop event")
	}
}
