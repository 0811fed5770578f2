// Package config provides configuration types for unitymcp settings.
// These types map to the YAML configuration file.
package config

// Config represents the top-level configuration for unitymcp.
// It is typically stored at ~/.config/unitymcp/config.yaml.
type Config struct {
	Bridge    BridgeConfig    `yaml:"bridge,omitempty"`
	Server    ServerConfig    `yaml:"server,omitempty"`
	Install   InstallConfig   `yaml:"install,omitempty"`
	History   HistoryConfig   `yaml:"history,omitempty"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`
	Log       LogConfig       `yaml:"log,omitempty"`
}

// BridgeConfig contains settings for the loopback bridge daemon.
type BridgeConfig struct {
	Listen        string `yaml:"listen,omitempty"`
	RetryWindow   string `yaml:"retry_window,omitempty"`
	RetryInterval string `yaml:"retry_interval,omitempty"`
}

// ServerConfig describes the companion local server installation.
type ServerConfig struct {
	Entry      string `yaml:"entry,omitempty"`
	LegacyRoot string `yaml:"legacy_root,omitempty"`
}

// InstallConfig contains settings for install/version detection.
type InstallConfig struct {
	PrefsFile     string   `yaml:"prefs_file,omitempty"`
	TrackingDir   string   `yaml:"tracking_dir,omitempty"`
	CompanionDirs []string `yaml:"companion_dirs,omitempty"`
}

// HistoryConfig contains settings for the test run history database.
type HistoryConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	File    string `yaml:"file,omitempty"`
	// Retention is how long ended runs are kept before pruning
	// (a Go duration string, e.g. "720h"). Empty disables pruning.
	Retention string `yaml:"retention,omitempty"`
}

// TelemetryConfig contains telemetry settings. The disable environment
// variable always wins over this file.
type TelemetryConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	File    string `yaml:"file,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	File   string `yaml:"file,omitempty"`
	Level  string `yaml:"level,omitempty"`
	Stderr bool   `yaml:"stderr,omitempty"`
}
