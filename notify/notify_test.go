package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noxouille/fps-monitor-overlay/drop"
)

type recordingSink struct {
	name  string
	order *[]string
}

func (s *recordingSink) Notify(drop.Event) {
	*s.order = append(*s.order, s.name)
}

func TestFanoutPreservesOrder(t *testing.T) {
	var order []string
	f := NewFanout(
		&recordingSink{name: "a", order: &order},
		&recordingSink{name: "b", order: &order},
	)
	f.Add(&recordingSink{name: "c", order: &order})

	f.Notify(drop.Event{})
	f.Notify(drop.Event{})

	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, order)
}

func TestFanoutWithNoSinks(t *testing.T) {
	f := NewFanout()
	assert.NotPanics(t, func() { f.Notify(drop.Event{}) })
}

func TestLogSinkWritesWarning(t *testing.T) {
	var buf syncBuffer
	log := zerolog.New(&buf)

	s := NewLogSink(log)
	s.Notify(drop.Event{
		Timestamp: time.Now(),
		Average:   60,
		Current:   45,
		Magnitude: 0.25,
	})

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, "FPS drop detected")
	assert.Contains(t, out, `"drop_pct":25`)
}

func TestWebhookSinkDeliversEvent(t *testing.T) {
	received := make(chan drop.Event, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var ev drop.Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ev))
		received <- ev
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewWebhookSink(srv.URL, zerolog.Nop())
	defer s.Close()

	s.Notify(drop.Event{Average: 60, Current: 30, Magnitude: 0.5})

	select {
	case ev := <-received:
		assert.Equal(t, 30.0, ev.Current)
		assert.Equal(t, 0.5, ev.Magnitude)
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was not called")
	}
}

func TestWebhookSinkNeverBlocks(t *testing.T) {
	// Unroutable URL: deliveries fail, Notify must still return instantly.
	s := NewWebhookSink("http://127.0.0.1:1", zerolog.Nop())
	defer s.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			s.Notify(drop.Event{Current: float64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked the caller")
	}
}

// syncBuffer is a minimal locked buffer for zerolog output in tests.
type syncBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
