package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies that DefaultConfig returns valid defaults.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Server defaults
	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected default host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "*" {
		t.Errorf("Expected wildcard CORS origin, got %v", cfg.Server.AllowedOrigins)
	}

	// Feed defaults
	if cfg.Feed.FrameRateHz != 60 {
		t.Errorf("Expected 60 Hz frame rate, got %g", cfg.Feed.FrameRateHz)
	}
	if cfg.Feed.BatchSize != 50 {
		t.Errorf("Expected batch size 50, got %d", cfg.Feed.BatchSize)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Expected info level, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Encoding != "json" {
		t.Errorf("Expected json encoding, got %s", cfg.Logging.Encoding)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got: %v", err)
	}
}

// TestLoadNonExistentFile tests that Load returns default config when file doesn't exist.
func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.json")
	if err != nil {
		t.Fatalf("Expected no error for non-existent file, got: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected default config, got nil")
	}
	if cfg.Server.Port != "8080" {
		t.Error("Did not get default config for non-existent file")
	}
}

// TestLoadValidConfig tests loading a valid JSON configuration file.
func TestLoadValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.json")

	testConfig := DefaultConfig()
	testConfig.Server.Port = "9090"
	testConfig.Server.Host = "127.0.0.1"
	testConfig.Feed.BatchSize = 25
	testConfig.Logging.Encoding = "console"
	testConfig.Radar.RemoteURL = "ws://feed.local:9090/ws"

	data, err := json.MarshalIndent(testConfig, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal test config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Feed.BatchSize != 25 {
		t.Errorf("Expected batch size 25, got %d", cfg.Feed.BatchSize)
	}
	if cfg.Logging.Encoding != "console" {
		t.Errorf("Expected console encoding, got %s", cfg.Logging.Encoding)
	}
	if cfg.Radar.RemoteURL != "ws://feed.local:9090/ws" {
		t.Errorf("Expected remote URL from file, got %s", cfg.Radar.RemoteURL)
	}
}

// TestLoadPartialConfigKeepsDefaults tests that missing fields keep defaults.
func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "partial.json")

	if err := os.WriteFile(configPath, []byte(`{"server": {"port": "9191"}}`), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Server.Port != "9191" {
		t.Errorf("Expected port 9191, got %s", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected default host to survive, got %s", cfg.Server.Host)
	}
	if cfg.Feed.FrameRateHz != 60 {
		t.Errorf("Expected default frame rate to survive, got %g", cfg.Feed.FrameRateHz)
	}
}

// TestLoadYAMLConfig tests loading a YAML configuration file.
func TestLoadYAMLConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlData := `
server:
  port: "7070"
  allowed_origins:
    - http://localhost:3000
feed:
  frame_rate_hz: 30
  batch_size: 100
logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(yamlData), 0644); err != nil {
		t.Fatalf("Failed to write YAML config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load YAML config: %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Errorf("Expected port 7070, got %s", cfg.Server.Port)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("Expected one allowed origin, got %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Feed.FrameRateHz != 30 {
		t.Errorf("Expected 30 Hz, got %g", cfg.Feed.FrameRateHz)
	}
	if cfg.Feed.BatchSize != 100 {
		t.Errorf("Expected batch size 100, got %d", cfg.Feed.BatchSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected debug level, got %s", cfg.Logging.Level)
	}
}

// TestLoadInvalidJSON tests error handling for malformed JSON.
func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.json")

	if err := os.WriteFile(configPath, []byte("{ invalid json }"), 0644); err != nil {
		t.Fatalf("Failed to write invalid config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid JSON, got nil")
	}
	if !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("Expected parse error, got: %v", err)
	}
}

// TestLoadInvalidValues tests that Load rejects unusable values.
func TestLoadInvalidValues(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad-values.yml")

	yamlData := `
feed:
  frame_rate_hz: 0
  batch_size: -1
logging:
  level: loud
`
	if err := os.WriteFile(configPath, []byte(yamlData), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}
	for _, want := range []string{"frame_rate_hz", "batch_size", "logging.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error to mention %s, got: %v", want, err)
		}
	}
}

// TestValidate tests individual validation rules.
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"non-numeric port", func(c *Config) { c.Server.Port = "http" }, true},
		{"port out of range", func(c *Config) { c.Server.Port = "70000" }, true},
		{"max batch below batch", func(c *Config) { c.Feed.MaxBatchSize = 10 }, true},
		{"unknown encoding", func(c *Config) { c.Logging.Encoding = "xml" }, true},
		{"uppercase level", func(c *Config) { c.Logging.Level = "WARN" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}

// TestSaveConfig tests saving configuration to file.
func TestSaveConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "saved-config.json")

	cfg := DefaultConfig()
	cfg.Server.Port = "9999"
	cfg.Radar.LogFile = "/tmp/radar-test.log"

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.Server.Port != "9999" {
		t.Errorf("Expected port 9999, got %s", loaded.Server.Port)
	}
	if loaded.Radar.LogFile != "/tmp/radar-test.log" {
		t.Errorf("Expected radar log file '/tmp/radar-test.log', got %s", loaded.Radar.LogFile)
	}
}

// TestSaveConfigCreatesDirectory tests that Save creates missing directories.
func TestSaveConfigCreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "dir", "config.yaml")

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Failed to save config with nested directory: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}

	// A YAML file must round trip through the YAML decoder
	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load saved YAML config: %v", err)
	}
	if loaded.Feed.MaxBatchSize != cfg.Feed.MaxBatchSize {
		t.Errorf("Expected max batch size %d, got %d", cfg.Feed.MaxBatchSize, loaded.Feed.MaxBatchSize)
	}
}

// TestEnvironmentOverrides tests environment variable overrides.
func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("MOCKFLIGHTS_PORT", "7777")
	t.Setenv("MOCKFLIGHTS_HOST", "127.0.0.1")
	t.Setenv("MOCKFLIGHTS_LOG_LEVEL", "debug")
	t.Setenv("MOCKFLIGHTS_RADAR_REMOTE", "ws://env-feed:8080/ws")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")
	testCfg := DefaultConfig()
	testCfg.Server.Port = "8080"

	data, _ := json.Marshal(testCfg)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != "7777" {
		t.Errorf("Expected port 7777 from env, got %s", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Expected host 127.0.0.1 from env, got %s", cfg.Server.Host)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected debug level from env, got %s", cfg.Logging.Level)
	}
	if cfg.Radar.RemoteURL != "ws://env-feed:8080/ws" {
		t.Errorf("Expected remote URL from env, got %s", cfg.Radar.RemoteURL)
	}
}

// TestDurationHelpers tests the derived durations.
func TestDurationHelpers(t *testing.T) {
	cfg := DefaultConfig()

	if got := cfg.Feed.FrameInterval(); got != time.Second/60 {
		t.Errorf("Expected frame interval %v, got %v", time.Second/60, got)
	}
	if got := cfg.Server.ReadTimeout(); got != 15*time.Second {
		t.Errorf("Expected read timeout 15s, got %v", got)
	}
	if got := cfg.Server.ShutdownTimeout(); got != 30*time.Second {
		t.Errorf("Expected shutdown timeout 30s, got %v", got)
	}
	if got := cfg.Server.Addr(); got != "0.0.0.0:8080" {
		t.Errorf("Expected addr 0.0.0.0:8080, got %s", got)
	}
}
