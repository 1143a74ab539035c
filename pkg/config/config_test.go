package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigobj/beaconfence/pkg/fence"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	id, err := cfg.Identity()
	require.NoError(t, err)
	assert.Equal(t, "BeaconRegion01", id.Name())
	assert.Equal(t, "ee7c8afc-4ded-48d6-9e17-19cf106d89ef", id.RegionID().String())
	assert.Equal(t, uint16(501), id.Major())
	assert.Equal(t, uint16(201), id.Minor())
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
fence:
  name: Lobby
  major: 7
advertising:
  ttl: 30s
  interface: en0
monitor:
  exit_timeout: 15s
logging:
  level: debug
  event_log: /tmp/fence.cbor
http:
  listen: ":8080"
state_file: /var/lib/beaconfence/state.json
`))
	require.NoError(t, err)

	assert.Equal(t, "Lobby", cfg.Fence.Name)
	assert.Equal(t, 7, cfg.Fence.Major)
	assert.Equal(t, DefaultMinor, cfg.Fence.Minor)
	assert.Equal(t, DefaultRegionID, cfg.Fence.UUID)
	assert.Equal(t, 30*time.Second, cfg.Advertising.TTL)
	assert.Equal(t, "en0", cfg.Advertising.Interface)
	assert.Equal(t, DefaultMeasuredPower, cfg.Advertising.MeasuredPower)
	assert.Equal(t, 15*time.Second, cfg.Monitor.ExitTimeout)
	assert.Equal(t, DefaultRefreshInterval, cfg.Monitor.RefreshInterval)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, ":8080", cfg.HTTP.Listen)
	assert.Equal(t, "/var/lib/beaconfence/state.json", cfg.StateFile)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("fence:\n  colour: red\n"))
	require.Error(t, err)
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		wantField string
		wantIs    error
	}{
		{"BadUUID", "fence:\n  uuid: nope\n", "fence.uuid", fence.ErrInvalidRegionID},
		{"MajorTooLarge", "fence:\n  major: 70000\n", "fence.major", fence.ErrInvalidMajor},
		{"MinorNegative", "fence:\n  minor: -1\n", "fence.minor", fence.ErrInvalidMinor},
		{"MeasuredPower", "advertising:\n  measured_power: 40\n", "advertising.measured_power", nil},
		{"MeasuredPowerZero", "advertising:\n  measured_power: 0\n", "advertising.measured_power", nil},
		{"MeasuredPowerPositive", "advertising:\n  measured_power: 4\n", "advertising.measured_power", nil},
		{"Port", "advertising:\n  port: 70000\n", "advertising.port", nil},
		{"NegativeTimeout", "monitor:\n  exit_timeout: -1s\n", "monitor.exit_timeout", nil},
		{"ZeroRefresh", "monitor:\n  refresh_interval: 0s\n", "monitor.refresh_interval", nil},
		{"Smoothing", "monitor:\n  smoothing: 1.5\n", "monitor.smoothing", nil},
		{"LogLevel", "logging:\n  level: verbose\n", "logging.level", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "want *ValidationError, got %T", err)
			assert.Equal(t, tt.wantField, ve.Field)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "beaconfence.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fence:\n  minor: 9\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Fence.Minor)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, DefaultName, cfg.Fence.Name)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
