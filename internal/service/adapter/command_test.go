package adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/emf-schedule/internal/config"
)

// TestResolve_OverridesConfig applies non-empty options on top of the file.
func TestResolve_OverridesConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("adapter:\n  listen_addr: 127.0.0.1:8100\n  cache_ttl: 30s\n"), config.DefaultFilePermissions))

	settings, err := resolve(&Options{ConfigPath: path})
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8100", settings.Adapter.ListenAddress)
	require.Equal(t, 30*time.Second, settings.Adapter.CacheTTL)

	noCache := time.Duration(0)

	settings, err = resolve(&Options{
		ConfigPath:    path,
		URL:           "http://localhost:9000/schedule.json",
		ListenAddress: "127.0.0.1:8200",
		CacheTTL:      &noCache,
	})
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9000/schedule.json", settings.APIURL)
	require.Equal(t, "127.0.0.1:8200", settings.Adapter.ListenAddress)
	require.Zero(t, settings.Adapter.CacheTTL)
}

// TestResolve_InvalidOverride rejects an unusable URL override.
func TestResolve_InvalidOverride(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), config.DefaultFilePermissions))

	_, err := resolve(&Options{ConfigPath: path, URL: "not a url"})
	require.Error(t, err)
}
