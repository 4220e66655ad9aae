package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	_ = resp.Body.Close()

	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

// TestHub_Broadcast delivers a message to every connected client.
func TestHub_Broadcast(t *testing.T) {
	t.Parallel()

	hub, url := startHub(t)
	first := dial(t, url)
	second := dial(t, url)

	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Broadcast(TypeEvent, map[string]any{"id": 7}))

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

		var got Message
		require.NoError(t, conn.ReadJSON(&got))
		require.Equal(t, TypeEvent, got.Type)
		require.Equal(t, map[string]any{"id": float64(7)}, got.Data)
		require.False(t, got.Timestamp.IsZero())
	}
}

// TestHub_Unregister forgets clients that disconnect.
func TestHub_Unregister(t *testing.T) {
	t.Parallel()

	hub, url := startHub(t)
	conn := dial(t, url)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

// TestHub_BroadcastFull reports a full queue when nothing drains it.
func TestHub_BroadcastFull(t *testing.T) {
	t.Parallel()

	hub := NewHub()

	for range broadcastBuffer {
		require.NoError(t, hub.Broadcast(TypeScheduleChanged, nil))
	}

	require.ErrorIs(t, hub.Broadcast(TypeScheduleChanged, nil), ErrBroadcastFull)
}

// TestHub_RejectsPlainHTTP answers non-upgrade requests with an error status.
func TestHub_RejectsPlainHTTP(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	rec := httptest.NewRecorder()

	hub.ServeHTTP(rec, httptest.NewRequest("GET", "/ws", nil))
	require.GreaterOrEqual(t, rec.Code, 400)
}
