package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration.
// The simulation itself is fixed; configuration only covers the surfaces
// around it (HTTP feed, frame pacing, logging, the terminal radar).
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Feed    FeedConfig    `json:"feed" yaml:"feed"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
	Radar   RadarConfig   `json:"radar" yaml:"radar"`
}

// ServerConfig contains HTTP feed server configuration.
type ServerConfig struct {
	// Port is the HTTP server port (default: 8080)
	Port string `json:"port" yaml:"port"`

	// Host is the server bind address (default: "0.0.0.0")
	Host string `json:"host" yaml:"host"`

	// ReadTimeoutSeconds bounds reading a request (default: 15)
	ReadTimeoutSeconds int `json:"read_timeout_seconds" yaml:"read_timeout_seconds"`

	// WriteTimeoutSeconds bounds writing a response (default: 15)
	// WebSocket streams are hijacked and not subject to it.
	WriteTimeoutSeconds int `json:"write_timeout_seconds" yaml:"write_timeout_seconds"`

	// ShutdownTimeoutSeconds is the grace period for in-flight requests (default: 30)
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds"`

	// AllowedOrigins lists CORS origins for browser map clients (default: "*")
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`
}

// FeedConfig controls how consumers poll the simulation feed.
type FeedConfig struct {
	// FrameRateHz is how many times per second a consumer polls (default: 60)
	FrameRateHz float64 `json:"frame_rate_hz" yaml:"frame_rate_hz"`

	// BatchSize is the most snapshots taken per frame (default: 50)
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// MaxBatchSize caps the ?max= parameter of the batch endpoint (default: 1000)
	MaxBatchSize int `json:"max_batch_size" yaml:"max_batch_size"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default: info)
	Level string `json:"level" yaml:"level"`

	// Encoding is "json" or "console" (default: json)
	Encoding string `json:"encoding" yaml:"encoding"`

	// OutputPaths are zap sinks: "stderr", "stdout" or file paths
	OutputPaths []string `json:"output_paths" yaml:"output_paths"`
}

// RadarConfig contains terminal radar settings.
type RadarConfig struct {
	// RemoteURL is a feed server WebSocket URL (e.g. "ws://localhost:8080/ws").
	// Empty runs an in-process simulation.
	RemoteURL string `json:"remote_url" yaml:"remote_url"`

	// LogFile receives radar logs so they do not draw over the screen
	LogFile string `json:"log_file" yaml:"log_file"`
}

// Load reads configuration from a JSON or YAML file, chosen by extension.
// If the file doesn't exist, returns a default configuration.
// Fields missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg.applyEnvironmentOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid environment overrides: %w", err)
		}
		return cfg, nil
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvironmentOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration to a JSON or YAML file, chosen by extension.
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                   "8080",
			Host:                   "0.0.0.0",
			ReadTimeoutSeconds:     15,
			WriteTimeoutSeconds:    15,
			ShutdownTimeoutSeconds: 30,
			AllowedOrigins:         []string{"*"},
		},
		Feed: FeedConfig{
			FrameRateHz:  60,   // one poll per rendered frame
			BatchSize:    50,   // the globe renderer takes 50 reports per frame
			MaxBatchSize: 1000, // one full tick
		},
		Logging: LoggingConfig{
			Level:       "info",
			Encoding:    "json",
			OutputPaths: []string{"stderr"},
		},
		Radar: RadarConfig{
			RemoteURL: "",
			LogFile:   "flight-radar.log",
		},
	}
}

// Validate checks that values are usable.
func (c *Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %q is not a valid port", c.Server.Port))
	}
	if c.Feed.FrameRateHz <= 0 {
		errs = append(errs, fmt.Errorf("feed.frame_rate_hz must be positive, got %g", c.Feed.FrameRateHz))
	}
	if c.Feed.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("feed.batch_size must be positive, got %d", c.Feed.BatchSize))
	}
	if c.Feed.MaxBatchSize < c.Feed.BatchSize {
		errs = append(errs, fmt.Errorf("feed.max_batch_size (%d) is below feed.batch_size (%d)",
			c.Feed.MaxBatchSize, c.Feed.BatchSize))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch c.Logging.Encoding {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.encoding %q is not json or console", c.Logging.Encoding))
	}

	return errors.Join(errs...)
}

// FrameInterval returns the time between two consumer polls.
func (f FeedConfig) FrameInterval() time.Duration {
	return time.Duration(float64(time.Second) / f.FrameRateHz)
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// ReadTimeout returns ReadTimeoutSeconds as a duration.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns WriteTimeoutSeconds as a duration.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// ShutdownTimeout returns ShutdownTimeoutSeconds as a duration.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

// isYAML reports whether path has a YAML extension.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
// This lets containers change ports and verbosity without editing files.
func (c *Config) applyEnvironmentOverrides() {
	if port := os.Getenv("MOCKFLIGHTS_PORT"); port != "" {
		c.Server.Port = port
	}
	if host := os.Getenv("MOCKFLIGHTS_HOST"); host != "" {
		c.Server.Host = host
	}
	if level := os.Getenv("MOCKFLIGHTS_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if remote := os.Getenv("MOCKFLIGHTS_RADAR_REMOTE"); remote != "" {
		c.Radar.RemoteURL = remote
	}
}
