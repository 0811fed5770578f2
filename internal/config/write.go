package config

import (
	"errors"
	"fmt"
	"os"
)

// defaultConfigTemplate is written on first run so users have a commented
// starting point rather than an empty file.
const defaultConfigTemplate = `# unitymcp configuration
#
# All fields are optional; unset fields use the built-in defaults shown
# in the comments. Paths may start with ~ for the home directory.

bridge:
  # Loopback address the bridge daemon listens on.
  listen: "127.0.0.1:6405"
  # How long clients keep retrying while the editor restarts the bridge.
  retry_window: "15s"
  retry_interval: "500ms"

server:
  # Entry file of the companion local server.
  entry: "~/.local/share/unitymcp/server/server.py"
  # Old install root; its presence triggers a repair.
  legacy_root: "~/.unity-mcp"

install:
  prefs_file: "~/.local/share/unitymcp/prefs.json"
  tracking_dir: "~/.local/share/unitymcp/tracking"
  # Project-local companion tool folders to track, e.g.:
  # companion_dirs:
  #   - "~/proj/Assets/Tools/Moose"

history:
  enabled: true
  file: "~/.local/state/unitymcp/history.db"
  # Ended runs older than this are pruned. Empty disables pruning.
  retention: "720h"

telemetry:
  # UNITYMCP_DISABLE_TELEMETRY=1 always wins over this setting.
  enabled: true

log:
  file: "~/.local/state/unitymcp/unitymcp.log"
  level: "info"
`

// WriteDefaultConfig creates the default configuration file with helpful
// comments. If the config file already exists, it returns nil without
// overwriting. The config directory is created if it doesn't exist.
// The file is written with 0600 permissions (user read/write only).
func WriteDefaultConfig() error {
	path := Path()

	_, err := os.Stat(path)
	if err == nil {
		// File exists, don't overwrite
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}

	if err := EnsureDir(); err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o600); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

// Write writes a configuration to the config directory, overwriting any
// existing file. The file is written with 0600 permissions.
func Write(cfg *Config) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err = os.WriteFile(Path(), data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
