package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Validate(nil), errConfigIsNotSet)

	// Missing URL.
	settings := new(Config)
	require.ErrorIs(t, Validate(settings), errAPIURLRequired)

	// Bad URL.
	settings = Default()
	settings.APIURL = "ftp://example.com/schedule.json"
	require.ErrorIs(t, Validate(settings), errInvalidAPIURL)

	// Bad log level.
	settings = Default()
	settings.LogLevel = "chatty"
	require.ErrorIs(t, Validate(settings), errInvalidLogLevel)

	// Bad listener.
	settings = Default()
	settings.Adapter.ListenAddress = "bad:address"
	require.Error(t, Validate(settings))

	// Negative lead time.
	settings = Default()
	settings.PreEventAnnouncementTime = -time.Second
	require.ErrorIs(t, Validate(settings), errNegativeDuration)

	// MQTT port only matters with a broker.
	settings = Default()
	settings.MQTT.Port = 0
	require.NoError(t, Validate(settings))

	settings.MQTT.Broker = "broker.local"
	require.ErrorIs(t, Validate(settings), errInvalidPort)

	// Zero durations fall back to defaults.
	settings = &Config{APIURL: "https://example.com/schedule.json"}
	require.NoError(t, Validate(settings))
	require.Equal(t, DefaultTimeout, settings.Timeout)
	require.Equal(t, DefaultRefreshInterval, settings.RefreshInterval)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	settings := Default()
	settings.APIURL = "http://localhost:8080/schedule.json"
	settings.PreEventAnnouncementTime = 2 * time.Minute
	settings.MQTT.Broker = "mqtt.local"
	settings.MQTT.Username = "announcer"

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings, loaded)
	require.Equal(t, -2*time.Minute, loaded.StartOffset())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(DefaultFilePermissions), info.Mode().Perm())
}

// TestLoad_PartialFileKeepsDefaults overlays only the keys present in the file.
func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	contents := "refresh_interval: 15s\nmqtt:\n  broker: mqtt.local\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), DefaultFilePermissions))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 15*time.Second, cfg.RefreshInterval)
	require.Equal(t, "mqtt.local", cfg.MQTT.Broker)
	require.Equal(t, DefaultMQTTPort, cfg.MQTT.Port)
	require.Equal(t, DefaultAPIURL, cfg.APIURL)
	require.Equal(t, DefaultCacheTTL, cfg.Adapter.CacheTTL)
}

// TestLoad_MissingFile fails for an explicit path only.
func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestSave_Nil rejects a nil configuration.
func TestSave_Nil(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Save(filepath.Join(t.TempDir(), "x.yaml"), nil), errConfigIsNotSet)
}

// TestDefault_MQTTDisabled leaves the broker empty so MQTT is off until configured.
func TestDefault_MQTTDisabled(t *testing.T) {
	t.Parallel()

	settings := Default()
	require.Empty(t, settings.MQTT.Broker)
	require.Equal(t, DefaultMQTTPort, settings.MQTT.Port)
	require.NoError(t, Validate(settings))
}
