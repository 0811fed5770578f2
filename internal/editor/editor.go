// Package editor defines the host editor environment boundary: the state
// signals, menu and console capabilities commands are dispatched against,
// and the main-thread task queue that host-only work must run on.
//
// The real implementation lives inside the Unity Editor and speaks the
// bridge wire contract; the Sim in this package stands in for it during
// development and tests.
package editor

import "time"

// Environment exposes the editor state signals that command handlers
// report to clients.
type Environment interface {
	// IsPlaying reports whether the editor is currently in play mode.
	IsPlaying() bool

	// IsCompiling reports whether the editor is currently compiling scripts.
	IsCompiling() bool
}

// StateHost exposes editor play mode state and control on top of the
// passive Environment signals.
type StateHost interface {
	Environment

	// IsPaused reports whether play mode is paused.
	IsPaused() bool

	// SetPlaying enters or exits play mode. Exiting clears the paused flag.
	SetPlaying(playing bool)

	// SetPaused pauses or resumes play mode.
	SetPaused(paused bool)
}

// MenuHost exposes the editor's menu surface.
type MenuHost interface {
	// ExecuteMenuItem invokes the menu item at path (e.g. "File/Save Project").
	// Returns an error if no such item exists or the item fails.
	ExecuteMenuItem(path string) error

	// MenuItems lists known menu item paths. When refresh is true the
	// host re-scans its menu tree before answering.
	MenuItems(refresh bool) []string

	// MenuExists reports whether a menu item exists at path.
	MenuExists(path string) bool
}

// ConsoleLevel classifies a console entry.
type ConsoleLevel string

// Console entry levels.
const (
	ConsoleError   ConsoleLevel = "error"
	ConsoleWarning ConsoleLevel = "warning"
	ConsoleLog     ConsoleLevel = "log"
)

// ConsoleEntry is one line captured from the editor console.
type ConsoleEntry struct {
	Level      ConsoleLevel `json:"level"`
	Message    string       `json:"message"`
	StackTrace string       `json:"stacktrace,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
}

// ConsoleHost exposes the editor's console buffer.
type ConsoleHost interface {
	// ConsoleEntries returns captured console entries, oldest first.
	ConsoleEntries() []ConsoleEntry

	// ClearConsole discards all captured console entries.
	ClearConsole()
}
