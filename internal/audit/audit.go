// Package audit provides structured logging for command dispatch events on
// the editor bridge. Log entries follow a key=value format suitable for
// parsing and analysis.
package audit

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// EventType represents the type of command event.
type EventType string

// Event types for command dispatch.
const (
	EventDispatch EventType = "DISPATCH"
	EventComplete EventType = "COMPLETE"
	EventError    EventType = "ERROR"
	EventRejected EventType = "REJECTED"
)

// Event represents a single command audit log entry.
type Event struct {
	// Timestamp is when the event occurred.
	Timestamp time.Time

	// Type is the event type (DISPATCH, COMPLETE, ERROR, REJECTED).
	Type EventType

	// Tool is the tool name the command was addressed to.
	Tool string

	// Action is the resolved action name.
	Action string

	// Detail carries the error message or rejection reason, when relevant.
	Detail string
}

// Format returns the log entry as a formatted string.
// Format: 2024-01-15T14:32:05Z COMMAND ERROR tool=run_play_mode_tests action=run detail="..."
func (e *Event) Format() string {
	var b strings.Builder

	b.WriteString(e.Timestamp.UTC().Format(time.RFC3339))
	b.WriteString(" COMMAND ")
	b.WriteString(string(e.Type))
	b.WriteString(" tool=")
	b.WriteString(e.Tool)
	b.WriteString(" action=")
	b.WriteString(e.Action)

	if e.Detail != "" {
		b.WriteString(" detail=")
		b.WriteString(fmt.Sprintf("%q", e.Detail))
	}

	return b.String()
}

// Logger writes audit events to an io.Writer.
type Logger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLogger creates a new audit logger that writes to the given writer.
func NewLogger(w io.Writer) *Logger {
	return &Logger{w: w}
}

// Log writes an event to the audit log.
func (l *Logger) Log(e *Event) error {
	if l == nil || l.w == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	line := e.Format() + "\n"
	_, err := l.w.Write([]byte(line))
	if err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	return nil
}

// LogDispatch logs a COMMAND DISPATCH event.
func (l *Logger) LogDispatch(tool, action string) error {
	return l.Log(&Event{Timestamp: time.Now(), Type: EventDispatch, Tool: tool, Action: action})
}

// LogComplete logs a COMMAND COMPLETE event.
func (l *Logger) LogComplete(tool, action string) error {
	return l.Log(&Event{Timestamp: time.Now(), Type: EventComplete, Tool: tool, Action: action})
}

// LogError logs a COMMAND ERROR event.
func (l *Logger) LogError(tool, action, detail string) error {
	return l.Log(&Event{Timestamp: time.Now(), Type: EventError, Tool: tool, Action: action, Detail: detail})
}

// LogRejected logs a COMMAND REJECTED event for an unrecognized action.
func (l *Logger) LogRejected(tool, action, reason string) error {
	return l.Log(&Event{Timestamp: time.Now(), Type: EventRejected, Tool: tool, Action: action, Detail: reason})
}
