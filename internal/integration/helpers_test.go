package integration

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/emf-schedule/internal/config"
)

// freeAddress reserves a local port and releases it for the service under test.
func freeAddress(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// upstreamEvent is the subset of the upstream event document the tests need.
type upstreamEvent struct {
	ID        uint32 `json:"id"`
	Title     string `json:"title"`
	Venue     string `json:"venue"`
	Type      string `json:"type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func newUpstreamEvent(id uint32, title, venue string, start time.Time) upstreamEvent {
	return upstreamEvent{
		ID:        id,
		Title:     title,
		Venue:     venue,
		Type:      "talk",
		StartDate: start.Format(time.RFC3339),
		EndDate:   start.Add(time.Hour).Format(time.RFC3339),
	}
}

// serveUpstream serves events as the upstream schedule API.
func serveUpstream(t *testing.T, events ...upstreamEvent) *httptest.Server {
	t.Helper()

	body, err := json.Marshal(events)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	return srv
}

// writeConfig saves cfg into a temporary settings file.
func writeConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, config.Save(path, cfg))

	return path
}

// waitHealthy polls /healthz until the service at address answers.
func waitHealthy(t *testing.T, address string) {
	t.Helper()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + address + "/healthz") //nolint:noctx // Test helper.
		if err != nil {
			return false
		}

		_ = resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)
}
