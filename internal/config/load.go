package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/mooselabs/unitymcp/internal/clog"
	"github.com/mooselabs/unitymcp/internal/pathutil"
)

// Load loads the configuration from the default config path. If the
// config file doesn't exist, it returns DefaultConfig(). If the file
// exists but cannot be read or parsed, it returns an error. All paths
// containing ~ are expanded to the actual home directory.
func Load() (*Config, error) {
	path := Path()
	clog.Debug("config: loading from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			clog.Debug("config: file not found, using defaults")
			cfg := DefaultConfig()
			expandPaths(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	applyDefaults(cfg)
	expandPaths(cfg)
	return cfg, nil
}

// applyDefaults fills empty fields of a parsed config from the defaults,
// so a partial config file behaves like the default with overrides.
func applyDefaults(cfg *Config) {
	def := DefaultConfig()

	if cfg.Bridge.Listen == "" {
		cfg.Bridge.Listen = def.Bridge.Listen
	}
	if cfg.Bridge.RetryWindow == "" {
		cfg.Bridge.RetryWindow = def.Bridge.RetryWindow
	}
	if cfg.Bridge.RetryInterval == "" {
		cfg.Bridge.RetryInterval = def.Bridge.RetryInterval
	}
	if cfg.Server.Entry == "" {
		cfg.Server.Entry = def.Server.Entry
	}
	if cfg.Server.LegacyRoot == "" {
		cfg.Server.LegacyRoot = def.Server.LegacyRoot
	}
	if cfg.Install.PrefsFile == "" {
		cfg.Install.PrefsFile = def.Install.PrefsFile
	}
	if cfg.Install.TrackingDir == "" {
		cfg.Install.TrackingDir = def.Install.TrackingDir
	}
	if cfg.History.Enabled == nil {
		cfg.History.Enabled = def.History.Enabled
	}
	if cfg.History.File == "" {
		cfg.History.File = def.History.File
	}
	if cfg.History.Retention == "" {
		cfg.History.Retention = def.History.Retention
	}
	if cfg.Telemetry.Enabled == nil {
		cfg.Telemetry.Enabled = def.Telemetry.Enabled
	}
	if cfg.Log.File == "" {
		cfg.Log.File = def.Log.File
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}

// expandPaths expands ~ to the home directory in all path fields.
func expandPaths(cfg *Config) {
	cfg.Server.Entry = pathutil.ExpandHome(cfg.Server.Entry)
	cfg.Server.LegacyRoot = pathutil.ExpandHome(cfg.Server.LegacyRoot)
	cfg.Install.PrefsFile = pathutil.ExpandHome(cfg.Install.PrefsFile)
	cfg.Install.TrackingDir = pathutil.ExpandHome(cfg.Install.TrackingDir)
	for i, dir := range cfg.Install.CompanionDirs {
		cfg.Install.CompanionDirs[i] = pathutil.ExpandHome(dir)
	}
	cfg.History.File = pathutil.ExpandHome(cfg.History.File)
	cfg.Telemetry.File = pathutil.ExpandHome(cfg.Telemetry.File)
	cfg.Log.File = pathutil.ExpandHome(cfg.Log.File)
}
