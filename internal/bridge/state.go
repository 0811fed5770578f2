package bridge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
)

// InstanceIDEnvVar isolates daemon state between test instances: when set,
// the state file gets an instance suffix so parallel bridges do not fight
// over one file.
const InstanceIDEnvVar = "UNITYMCP_INSTANCE_ID"

// DaemonState tracks a running bridge daemon.
type DaemonState struct {
	PID  int    `json:"pid"`
	Addr string `json:"addr"` // address the bridge is listening on
}

// DaemonStateDir returns the directory for daemon state files,
// ~/.local/share/unitymcp.
func DaemonStateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "unitymcp"), nil
}

// DaemonStatePath returns the path to the daemon state file.
func DaemonStatePath() (string, error) {
	dir, err := DaemonStateDir()
	if err != nil {
		return "", err
	}
	filename := "bridge.json"
	if id := os.Getenv(InstanceIDEnvVar); id != "" {
		filename = "bridge-" + id + ".json"
	}
	return filepath.Join(dir, filename), nil
}

// SaveDaemonState saves the daemon state to disk.
func SaveDaemonState(state *DaemonState) error {
	path, err := DaemonStatePath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}

	return nil
}

// LoadDaemonState loads the daemon state from disk.
// Returns nil if the state file doesn't exist.
func LoadDaemonState() (*DaemonState, error) {
	path, err := DaemonStatePath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	var state DaemonState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	return &state, nil
}

// RemoveDaemonState removes the daemon state file.
func RemoveDaemonState() error {
	path, err := DaemonStatePath()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove state: %w", err)
	}
	return nil
}

// IsDaemonRunning checks if the daemon process is still running.
func IsDaemonRunning(state *DaemonState) bool {
	if state == nil || state.PID == 0 {
		return false
	}

	process, err := os.FindProcess(state.PID)
	if err != nil {
		return false
	}

	// On Unix, FindProcess always succeeds.
	// Send signal 0 to check if the process exists.
	err = process.Signal(syscall.Signal(0))
	return err == nil
}

// StopDaemon sends SIGTERM to the daemon process. An already-dead daemon
// is not an error.
func StopDaemon(state *DaemonState) error {
	if state == nil || state.PID == 0 {
		return nil
	}

	process, err := os.FindProcess(state.PID)
	if err != nil {
		return nil //nolint:nilerr // process doesn't exist, nothing to stop
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return nil //nolint:nilerr // process already dead, nothing to stop
	}

	return nil
}

// CleanupStaleState removes the state file if the recorded process is not
// running, handling daemons that crashed without cleanup.
func CleanupStaleState() error {
	state, err := LoadDaemonState()
	if err != nil {
		return err
	}

	if state != nil && !IsDaemonRunning(state) {
		return RemoveDaemonState()
	}

	return nil
}

// GetPIDString returns this process's PID for environment passing.
func GetPIDString() string {
	return strconv.Itoa(os.Getpid())
}
