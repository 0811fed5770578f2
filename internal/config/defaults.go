package config

import (
	"fmt"

	"github.com/mooselabs/unitymcp/internal/bridge"
)

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// DefaultConfig returns a Config with all defaults populated. State files
// follow XDG conventions under ~/.local/state and ~/.local/share.
func DefaultConfig() *Config {
	return &Config{
		Bridge: BridgeConfig{
			Listen:        fmt.Sprintf("127.0.0.1:%d", bridge.DefaultPort),
			RetryWindow:   "15s",
			RetryInterval: "500ms",
		},
		Server: ServerConfig{
			Entry:      "~/.local/share/unitymcp/server/server.py",
			LegacyRoot: "~/.unity-mcp",
		},
		Install: InstallConfig{
			PrefsFile:   "~/.local/share/unitymcp/prefs.json",
			TrackingDir: "~/.local/share/unitymcp/tracking",
		},
		History: HistoryConfig{
			Enabled:   boolPtr(true),
			File:      "~/.local/state/unitymcp/history.db",
			Retention: "720h",
		},
		Telemetry: TelemetryConfig{
			Enabled: boolPtr(true),
		},
		Log: LogConfig{
			File:  "~/.local/state/unitymcp/unitymcp.log",
			Level: "info",
		},
	}
}
