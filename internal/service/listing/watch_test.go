package listing

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"github.com/oshokin/emf-schedule/internal/api/grpc/announcements"
)

// TestWatch prints each announcement as a JSON line until the stream ends.
func TestWatch(t *testing.T) {
	t.Parallel()

	server := announcements.NewServer()
	listener := bufconn.Listen(1 << 20)
	grpcServer := grpc.NewServer()
	announcements.Register(grpcServer, server)

	go func() {
		_ = grpcServer.Serve(listener)
	}()

	t.Cleanup(grpcServer.Stop)

	client, err := announcements.Dial("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return listener.DialContext(ctx)
	}))
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	var out bytes.Buffer

	done := make(chan error, 1)

	go func() {
		done <- watch(context.Background(), client, &out)
	}()

	require.Eventually(t, func() bool { return server.Subscribers() == 1 }, 5*time.Second, 10*time.Millisecond)

	delivered, err := server.Publish(context.Background(), map[string]any{"id": 7, "title": "Engines"})
	require.NoError(t, err)
	require.Equal(t, 1, delivered)

	server.Close()

	select {
	case err = <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return after the stream ended")
	}

	var announcement map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out.String())), &announcement))
	require.Equal(t, "Engines", announcement["title"])
	require.InDelta(t, 7, announcement["id"], 0)
}

// TestWatch_RequiresAddress refuses an empty address.
func TestWatch_RequiresAddress(t *testing.T) {
	t.Parallel()

	require.Error(t, Watch(context.Background(), "", &bytes.Buffer{}))
}
