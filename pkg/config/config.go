package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	// DefaultEndpoint is the backend websocket URL.
	DefaultEndpoint = "ws://localhost:8000/ws"

	// DefaultReconnectInterval is the delay between reconnection attempts.
	DefaultReconnectInterval = 3 * time.Second

	// DefaultBufferCapacity is the reading buffer size.
	DefaultBufferCapacity = 500
)

// Duration wraps time.Duration for YAML encoding as a string
// ("3s", "500ms").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds the telemetry client configuration.
type Config struct {
	// Endpoint is the backend websocket URL.
	Endpoint string `yaml:"endpoint"`

	// ReconnectInterval is the fixed delay between reconnection
	// attempts.
	ReconnectInterval Duration `yaml:"reconnect_interval"`

	// BufferCapacity bounds the in-memory reading buffer.
	BufferCapacity int `yaml:"buffer_capacity"`

	// KeepAlive configures ping/pong liveness monitoring.
	KeepAlive KeepAliveConfig `yaml:"keepalive"`

	// Capture configures event capture to a .wlog file.
	Capture CaptureConfig `yaml:"capture"`

	// LogLevel is the console log level: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// KeepAliveConfig configures ping/pong liveness monitoring.
type KeepAliveConfig struct {
	// Disabled turns keep-alive off entirely.
	Disabled bool `yaml:"disabled"`

	// PingInterval is the interval between pings.
	PingInterval Duration `yaml:"ping_interval"`

	// PongTimeout is the timeout waiting for a pong response.
	PongTimeout Duration `yaml:"pong_timeout"`

	// MaxMissedPongs is the number of missed pongs before disconnect.
	MaxMissedPongs int `yaml:"max_missed_pongs"`
}

// CaptureConfig configures event capture.
type CaptureConfig struct {
	// Enabled turns capture on.
	Enabled bool `yaml:"enabled"`

	// Path is the capture file path.
	Path string `yaml:"path"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Endpoint:          DefaultEndpoint,
		ReconnectInterval: Duration(DefaultReconnectInterval),
		BufferCapacity:    DefaultBufferCapacity,
		KeepAlive: KeepAliveConfig{
			PingInterval:   Duration(15 * time.Second),
			PongTimeout:    Duration(5 * time.Second),
			MaxMissedPongs: 3,
		},
		Capture: CaptureConfig{
			Path: "windlab.wlog",
		},
		LogLevel: "info",
	}
}

// Load reads a YAML configuration file, layered over the defaults.
// A missing file returns the defaults without error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("invalid endpoint %q: scheme must be ws or wss", c.Endpoint)
	}
	if c.ReconnectInterval < 0 {
		return fmt.Errorf("reconnect_interval must not be negative")
	}
	if c.BufferCapacity < 0 {
		return fmt.Errorf("buffer_capacity must not be negative")
	}
	if c.Capture.Enabled && c.Capture.Path == "" {
		return fmt.Errorf("capture.path is required when capture is enabled")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return nil
}

// Save writes the configuration to a YAML file.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
