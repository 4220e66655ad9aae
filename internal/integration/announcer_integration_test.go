package integration

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/oshokin/emf-schedule/internal/api/grpc/announcements"
	"github.com/oshokin/emf-schedule/internal/config"
	"github.com/oshokin/emf-schedule/internal/service/relay"
)

// TestAnnouncer_StreamsDueEvents runs the announcer against a fake upstream and
// receives the next event over the gRPC stream while past events are skipped.
func TestAnnouncer_StreamsDueEvents(t *testing.T) {
	t.Parallel()

	now := time.Now().Truncate(time.Second)
	upstream := serveUpstream(t,
		newUpstreamEvent(1, "Opening", "Stage A", now.Add(-time.Hour)),
		newUpstreamEvent(2, "Engines", "Stage B", now.Add(3*time.Second)),
	)

	cfg := config.Default()
	cfg.APIURL = upstream.URL
	cfg.RefreshInterval = time.Second
	cfg.Announcer.ListenAddress = freeAddress(t)
	cfg.Announcer.GRPCAddress = freeAddress(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- relay.Run(ctx, &relay.Options{ConfigPath: writeConfig(t, cfg)})
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	waitHealthy(t, cfg.Announcer.ListenAddress)

	client, err := announcements.Dial(cfg.Announcer.GRPCAddress,
		grpc.WithDefaultCallOptions(grpc.WaitForReady(true)))
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	streamCtx, streamCancel := context.WithTimeout(ctx, 10*time.Second)
	defer streamCancel()

	subscription, err := client.Subscribe(streamCtx)
	require.NoError(t, err)

	announcement, err := subscription.Recv()
	require.NoError(t, err)
	require.InDelta(t, 2, announcement.GetFields()["id"].GetNumberValue(), 0)
	require.Equal(t, "Engines", announcement.GetFields()["title"].GetStringValue())

	require.Eventually(t, func() bool {
		body := scrape(t, "http://"+cfg.Announcer.ListenAddress+"/metrics")

		return strings.Contains(body, "schedule_announcer_events_total 1") &&
			strings.Contains(body, `schedule_relay_announcements_total{result="success",sink="grpc",size="smol"} 1`)
	}, 5*time.Second, 50*time.Millisecond)
}

func scrape(t *testing.T, url string) string {
	t.Helper()

	resp, err := http.Get(url) //nolint:noctx // Test helper.
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(body)
}
