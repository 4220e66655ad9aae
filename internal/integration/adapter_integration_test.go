package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/emf-schedule/internal/config"
	"github.com/oshokin/emf-schedule/internal/service/adapter"
)

// TestAdapter_ServesQueries runs the adapter against a fake upstream and queries it over HTTP.
func TestAdapter_ServesQueries(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 5, 31, 10, 0, 0, 0, time.UTC)
	upstream := serveUpstream(t,
		newUpstreamEvent(2, "Looms", "Stage B", start.Add(time.Hour)),
		newUpstreamEvent(1, "Engines", "Stage A", start),
	)

	cfg := config.Default()
	cfg.APIURL = upstream.URL
	cfg.Adapter.ListenAddress = freeAddress(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- adapter.Run(ctx, &adapter.Options{ConfigPath: writeConfig(t, cfg)})
	}()

	waitHealthy(t, cfg.Adapter.ListenAddress)

	var venues []string

	getJSON(t, "http://"+cfg.Adapter.ListenAddress+"/venues", &venues)
	require.Equal(t, []string{"Stage A", "Stage B"}, venues)

	var events []map[string]any

	getJSON(t, "http://"+cfg.Adapter.ListenAddress+"/schedule?venue=Stage+B", &events)
	require.Len(t, events, 1)
	require.Equal(t, "Looms", events[0]["title"])

	cancel()
	require.NoError(t, <-done)
}

func getJSON(t *testing.T, url string, target any) {
	t.Helper()

	resp, err := http.Get(url) //nolint:noctx // Test helper.
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}
