package editor

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Sim is an in-process editor environment used by the development bridge
// daemon and by tests. It implements Environment, MenuHost and ConsoleHost
// with an in-memory menu registry and console buffer.
type Sim struct {
	mu        sync.RWMutex
	playing   bool
	paused    bool
	compiling bool
	menus     map[string]func() error
	console   []ConsoleEntry
}

// NewSim creates a simulated editor with a minimal default menu tree.
func NewSim() *Sim {
	s := &Sim{menus: make(map[string]func() error)}
	for _, path := range []string{
		"File/Save Project",
		"Assets/Refresh",
		"Edit/Play",
		"Window/General/Console",
	} {
		s.menus[path] = nil
	}
	return s
}

// SetPlaying sets the play mode flag. Leaving play mode clears the
// paused flag.
func (s *Sim) SetPlaying(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = playing
	if !playing {
		s.paused = false
	}
}

// SetPaused sets the play mode pause flag.
func (s *Sim) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
}

// IsPaused reports whether the simulated play mode is paused.
func (s *Sim) IsPaused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused
}

// SetCompiling sets the compiling flag.
func (s *Sim) SetCompiling(compiling bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.compiling = compiling
}

// IsPlaying reports whether the simulated editor is in play mode.
func (s *Sim) IsPlaying() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playing
}

// IsCompiling reports whether the simulated editor is compiling.
func (s *Sim) IsCompiling() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.compiling
}

// RegisterMenu adds a menu item at path. fn may be nil for a no-op item.
func (s *Sim) RegisterMenu(path string, fn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menus[path] = fn
}

// ExecuteMenuItem invokes the registered menu item at path.
func (s *Sim) ExecuteMenuItem(path string) error {
	s.mu.RLock()
	fn, ok := s.menus[path]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("menu item not found: %s", path)
	}
	if fn == nil {
		return nil
	}
	return fn()
}

// MenuItems lists registered menu paths, sorted. refresh is accepted for
// interface compatibility; the simulated registry is always current.
func (s *Sim) MenuItems(refresh bool) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]string, 0, len(s.menus))
	for path := range s.menus {
		items = append(items, path)
	}
	sort.Strings(items)
	return items
}

// MenuExists reports whether a menu item is registered at path.
func (s *Sim) MenuExists(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.menus[path]
	return ok
}

// Log appends an entry to the simulated console.
func (s *Sim) Log(level ConsoleLevel, message, stacktrace string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.console = append(s.console, ConsoleEntry{
		Level:      level,
		Message:    message,
		StackTrace: stacktrace,
		Timestamp:  time.Now(),
	})
}

// ConsoleEntries returns a copy of the console buffer, oldest first.
func (s *Sim) ConsoleEntries() []ConsoleEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ConsoleEntry, len(s.console))
	copy(out, s.console)
	return out
}

// ClearConsole discards the console buffer.
func (s *Sim) ClearConsole() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.console = nil
}

// String describes the simulated editor state, for debug logging.
func (s *Sim) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var flags []string
	if s.playing {
		flags = append(flags, "playing")
	}
	if s.paused {
		flags = append(flags, "paused")
	}
	if s.compiling {
		flags = append(flags, "compiling")
	}
	if len(flags) == 0 {
		flags = append(flags, "idle")
	}
	return "editor-sim[" + strings.Join(flags, ",") + "]"
}
