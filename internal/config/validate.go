package config

import (
	"fmt"
	"net"
	"time"
)

// validLogLevels are the accepted log level names.
var validLogLevels = map[string]bool{
	"":      true, // empty means default
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks a parsed Config for values that would fail later in
// confusing ways: unparseable durations, bad listen addresses, unknown
// log levels. Empty fields are always valid; defaults fill them in.
func Validate(cfg *Config) error {
	if cfg.Bridge.Listen != "" {
		if _, _, err := net.SplitHostPort(cfg.Bridge.Listen); err != nil {
			return fmt.Errorf("bridge.listen %q: %w", cfg.Bridge.Listen, err)
		}
	}

	for _, d := range []struct {
		name  string
		value string
	}{
		{"bridge.retry_window", cfg.Bridge.RetryWindow},
		{"bridge.retry_interval", cfg.Bridge.RetryInterval},
		{"history.retention", cfg.History.Retention},
	} {
		if d.value == "" {
			continue
		}
		if _, err := time.ParseDuration(d.value); err != nil {
			return fmt.Errorf("%s %q: %w", d.name, d.value, err)
		}
	}

	if !validLogLevels[cfg.Log.Level] {
		return fmt.Errorf("log.level %q: must be one of debug, info, warn, error", cfg.Log.Level)
	}

	return nil
}
