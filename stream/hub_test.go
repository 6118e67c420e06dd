package stream

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestHub(t *testing.T) (*Hub, *websocket.Conn, context.CancelFunc) {
	t.Helper()

	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	return hub, conn, cancel
}

func TestBroadcastReachesClient(t *testing.T) {
	hub, conn, cancel := dialTestHub(t)
	defer cancel()

	type payload struct {
		CurrentFPS float64 `json:"current_fps"`
	}
	hub.Broadcast(payload{CurrentFPS: 59.7})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got payload
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, 59.7, got.CurrentFPS)
}

func TestClientCountDropsOnDisconnect(t *testing.T) {
	hub, conn, cancel := dialTestHub(t)
	defer cancel()

	conn.Close()

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestBroadcastWithoutClientsDoesNotBlock(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Broadcast(map[string]int{"i": i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked with no clients")
	}
}

func TestBroadcastSkipsUnmarshalableValue(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	assert.NotPanics(t, func() { hub.Broadcast(make(chan int)) })
}
