package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolateConfig points the config directory at a temp dir.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return filepath.Join(dir, "unitymcp")
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Bridge.Listen != "" {
		t.Errorf("zero-value config has listen %q", cfg.Bridge.Listen)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("bridge:\n  lisen: \"127.0.0.1:1\"\n"))
	if err == nil {
		t.Error("Parse() should reject unknown fields")
	}
}

func TestParseTypeMismatch(t *testing.T) {
	_, err := Parse([]byte("history:\n  enabled: \"maybe\"\n"))
	if err == nil {
		t.Error("Parse() should reject type mismatches")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "bad listen address",
			mutate:  func(cfg *Config) { cfg.Bridge.Listen = "not-an-address" },
			wantErr: "bridge.listen",
		},
		{
			name:    "bad retry window",
			mutate:  func(cfg *Config) { cfg.Bridge.RetryWindow = "soon" },
			wantErr: "bridge.retry_window",
		},
		{
			name:    "bad retention",
			mutate:  func(cfg *Config) { cfg.History.Retention = "30 days" },
			wantErr: "history.retention",
		},
		{
			name:    "bad log level",
			mutate:  func(cfg *Config) { cfg.Log.Level = "verbose" },
			wantErr: "log.level",
		},
		{
			name:   "empty fields are valid",
			mutate: func(cfg *Config) { *cfg = Config{} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	isolateConfig(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Bridge.Listen != DefaultConfig().Bridge.Listen {
		t.Errorf("listen = %q", cfg.Bridge.Listen)
	}
	if cfg.History.Enabled == nil || !*cfg.History.Enabled {
		t.Error("history should default to enabled")
	}
}

func TestLoadPartialConfigFillsDefaults(t *testing.T) {
	dir := isolateConfig(t)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	content := "bridge:\n  listen: \"127.0.0.1:7000\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Bridge.Listen != "127.0.0.1:7000" {
		t.Errorf("override lost: listen = %q", cfg.Bridge.Listen)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("default not applied: level = %q", cfg.Log.Level)
	}
}

func TestLoadExpandsHome(t *testing.T) {
	isolateConfig(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if strings.HasPrefix(cfg.Server.Entry, "~") {
		t.Errorf("server entry not expanded: %q", cfg.Server.Entry)
	}
	if strings.HasPrefix(cfg.History.File, "~") {
		t.Errorf("history file not expanded: %q", cfg.History.File)
	}
}

func TestLoadInvalidConfigFails(t *testing.T) {
	dir := isolateConfig(t)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log:\n  level: chatty\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load() should fail on an invalid config")
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	isolateConfig(t)

	if err := WriteDefaultConfig(); err != nil {
		t.Fatalf("WriteDefaultConfig() error = %v", err)
	}

	// The template must parse and validate cleanly.
	data, err := os.ReadFile(Path())
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("template does not parse: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("template does not validate: %v", err)
	}

	// A second write must not clobber an existing file.
	if err := os.WriteFile(Path(), []byte("log:\n  level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := WriteDefaultConfig(); err != nil {
		t.Fatalf("second WriteDefaultConfig() error = %v", err)
	}
	data, _ = os.ReadFile(Path())
	if !strings.Contains(string(data), "debug") {
		t.Error("existing config was overwritten")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	isolateConfig(t)

	cfg := DefaultConfig()
	cfg.Bridge.Listen = "127.0.0.1:7123"
	if err := Write(cfg); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Bridge.Listen != "127.0.0.1:7123" {
		t.Errorf("listen = %q", loaded.Bridge.Listen)
	}
}
