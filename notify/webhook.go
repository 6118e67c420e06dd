package notify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/noxouille/fps-monitor-overlay/drop"
)

// WebhookSink POSTs each drop as JSON to an external endpoint. Delivery
// runs on a worker goroutine so a slow endpoint never stalls the frame
// pipeline.
type WebhookSink struct {
	url    string
	client *http.Client
	log    zerolog.Logger
	queue  chan drop.Event
	done   chan struct{}
}

// NewWebhookSink creates a WebhookSink for url and starts its worker.
func NewWebhookSink(url string, log zerolog.Logger) *WebhookSink {
	s := &WebhookSink{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log,
		queue:  make(chan drop.Event, 100),
		done:   make(chan struct{}),
	}
	go s.worker()
	return s
}

// Notify enqueues e without blocking; when the queue is full the event is
// discarded.
func (s *WebhookSink) Notify(e drop.Event) {
	select {
	case s.queue <- e:
	default:
		s.log.Debug().Msg("Webhook queue full, dropping event")
	}
}

// Close stops the worker. Events still queued may be discarded.
func (s *WebhookSink) Close() {
	close(s.done)
}

func (s *WebhookSink) worker() {
	for {
		select {
		case e := <-s.queue:
			s.send(e)
		case <-s.done:
			return
		}
	}
}

func (s *WebhookSink) send(e drop.Event) {
	body, err := json.Marshal(e)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode drop event")
		return
	}

	req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to build webhook request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error().Err(err).Str("url", s.url).Msg("Failed to deliver drop event")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		s.log.Error().Int("status", resp.StatusCode).Msg("Webhook response error")
	}
}
