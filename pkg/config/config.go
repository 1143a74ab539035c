// Package config loads beaconfence settings from YAML.
//
// Every field has a default, so the commands run without a config file.
// Command-line flags are applied on top of the loaded values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sigobj/beaconfence/pkg/fence"
)

// Defaults for the demo beacon.
const (
	DefaultName     = "BeaconRegion01"
	DefaultRegionID = "EE7C8AFC-4DED-48D6-9E17-19CF106D89EF"
	DefaultMajor    = 501
	DefaultMinor    = 201

	DefaultMeasuredPower   = -59
	DefaultTTL             = 120 * time.Second
	DefaultPort            = 7474
	DefaultRefreshInterval = time.Second
	DefaultSmoothing       = 0.3
	DefaultLogLevel        = "info"
)

// Config is the root configuration document.
type Config struct {
	Fence       FenceConfig       `yaml:"fence"`
	Advertising AdvertisingConfig `yaml:"advertising"`
	Monitor     MonitorConfig     `yaml:"monitor"`
	Logging     LoggingConfig     `yaml:"logging"`
	HTTP        HTTPConfig        `yaml:"http"`

	// StateFile is the JSON file holding persisted fences. Empty disables persistence.
	StateFile string `yaml:"state_file"`
}

// FenceConfig identifies the beacon.
type FenceConfig struct {
	Name  string `yaml:"name"`
	UUID  string `yaml:"uuid"`
	Major int    `yaml:"major"`
	Minor int    `yaml:"minor"`
}

// AdvertisingConfig configures the emitter.
type AdvertisingConfig struct {
	Interface     string        `yaml:"interface"`
	TTL           time.Duration `yaml:"ttl"`
	MeasuredPower int           `yaml:"measured_power"`
	Port          int           `yaml:"port"`
}

// MonitorConfig configures region monitoring.
type MonitorConfig struct {
	// ExitTimeout signals exit after this long without a reading. Zero disables it.
	ExitTimeout time.Duration `yaml:"exit_timeout"`

	// RefreshInterval is how often status lines are printed.
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	// Smoothing is the RSSI moving-average factor in (0, 1].
	Smoothing float64 `yaml:"smoothing"`
}

// LoggingConfig configures operational and event logging.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	EventLog string `yaml:"event_log"`
}

// HTTPConfig configures the status endpoint. Empty Listen disables it.
type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// ValidationError reports an invalid configuration value.
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config: %s: %s: %v", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Fence: FenceConfig{
			Name:  DefaultName,
			UUID:  DefaultRegionID,
			Major: DefaultMajor,
			Minor: DefaultMinor,
		},
		Advertising: AdvertisingConfig{
			TTL:           DefaultTTL,
			MeasuredPower: DefaultMeasuredPower,
			Port:          DefaultPort,
		},
		Monitor: MonitorConfig{
			RefreshInterval: DefaultRefreshInterval,
			Smoothing:       DefaultSmoothing,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Parse decodes YAML over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// LoadOrDefault loads path, or returns Default when path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	return Load(path)
}

// Validate checks all values.
func (c *Config) Validate() error {
	if _, err := c.Identity(); err != nil {
		return err
	}
	if c.Advertising.MeasuredPower < -127 || c.Advertising.MeasuredPower > -1 {
		return &ValidationError{Field: "advertising.measured_power", Message: "must be between -127 and -1 dBm"}
	}
	if c.Advertising.TTL < 0 {
		return &ValidationError{Field: "advertising.ttl", Message: "must not be negative"}
	}
	if c.Advertising.Port < 0 || c.Advertising.Port > 65535 {
		return &ValidationError{Field: "advertising.port", Message: "must be between 0 and 65535"}
	}
	if c.Monitor.ExitTimeout < 0 {
		return &ValidationError{Field: "monitor.exit_timeout", Message: "must not be negative"}
	}
	if c.Monitor.RefreshInterval <= 0 {
		return &ValidationError{Field: "monitor.refresh_interval", Message: "must be positive"}
	}
	if c.Monitor.Smoothing <= 0 || c.Monitor.Smoothing > 1 {
		return &ValidationError{Field: "monitor.smoothing", Message: "must be in (0, 1]"}
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return &ValidationError{Field: "logging.level", Message: "unknown level", Cause: err}
	}
	return nil
}

// Identity builds the configured beacon identity.
func (c *Config) Identity() (fence.Identity, error) {
	id, err := fence.ParseIdentity(c.Fence.Name, c.Fence.UUID, c.Fence.Major, c.Fence.Minor)
	if err != nil {
		field := "fence"
		switch {
		case errors.Is(err, fence.ErrInvalidRegionID):
			field = "fence.uuid"
		case errors.Is(err, fence.ErrInvalidMajor):
			field = "fence.major"
		case errors.Is(err, fence.ErrInvalidMinor):
			field = "fence.minor"
		}
		return fence.Identity{}, &ValidationError{Field: field, Message: "invalid beacon identity", Cause: err}
	}
	return id, nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
