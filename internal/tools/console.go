package tools

import (
	"fmt"
	"strings"

	"github.com/mooselabs/unitymcp/internal/command"
	"github.com/mooselabs/unitymcp/internal/editor"
)

// ToolReadConsole is the wire name of the console tool.
const ToolReadConsole = "read_console"

// Console handles read_console commands against the editor's console
// buffer.
type Console struct {
	host editor.ConsoleHost
}

// NewConsole creates the console tool over the given host.
func NewConsole(host editor.ConsoleHost) *Console {
	return &Console{host: host}
}

// Router returns the action router for this tool.
func (t *Console) Router() *command.Router {
	r := command.NewRouter(ToolReadConsole, "get")
	r.Handle("get", t.get)
	r.Handle("clear", t.clear)
	return r
}

// get returns captured console entries. Defaults favor the common case of
// pulling recent errors: types=["error"], count=50, format=json.
func (t *Console) get(p command.Params) command.Response {
	types := p.Strings("types")
	if len(types) == 0 {
		types = []string{string(editor.ConsoleError)}
	}
	levels, err := parseLevels(types)
	if err != nil {
		return command.Errorf("%s", err)
	}

	count := p.Int("count", 50)
	if count < 0 {
		return command.Errorf("count must not be negative, got %d", count)
	}

	format := strings.ToLower(p.String("format"))
	if format == "" {
		format = "json"
	}
	switch format {
	case "json", "plain", "detailed":
	default:
		return command.Errorf("unknown format: %q. Valid formats are: detailed, json, plain", format)
	}

	filter := strings.ToLower(p.String("filter_text", "filterText"))
	includeStack := p.Bool("include_stacktrace", true)

	var matched []editor.ConsoleEntry
	for _, e := range t.host.ConsoleEntries() {
		if !levels[e.Level] {
			continue
		}
		if filter != "" && !strings.Contains(strings.ToLower(e.Message), filter) {
			continue
		}
		matched = append(matched, e)
	}

	// Keep the newest entries when truncating; the buffer is oldest first.
	if count > 0 && len(matched) > count {
		matched = matched[len(matched)-count:]
	}

	lines := make([]any, 0, len(matched))
	for _, e := range matched {
		lines = append(lines, renderEntry(e, format, includeStack))
	}

	return command.SuccessData(fmt.Sprintf("Retrieved %d console entries", len(lines)), map[string]any{
		"lines": lines,
		"count": len(lines),
	})
}

// clear discards the console buffer.
func (t *Console) clear(p command.Params) command.Response {
	t.host.ClearConsole()
	return command.Successf("Console cleared")
}

// parseLevels expands the requested type names into a level set. The
// pseudo-type "all" selects every level.
func parseLevels(types []string) (map[editor.ConsoleLevel]bool, error) {
	levels := make(map[editor.ConsoleLevel]bool)
	for _, raw := range types {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "all":
			levels[editor.ConsoleError] = true
			levels[editor.ConsoleWarning] = true
			levels[editor.ConsoleLog] = true
		case "error":
			levels[editor.ConsoleError] = true
		case "warning":
			levels[editor.ConsoleWarning] = true
		case "log", "info":
			levels[editor.ConsoleLog] = true
		default:
			return nil, fmt.Errorf("unknown console type: %q. Valid types are: all, error, log, warning", raw)
		}
	}
	return levels, nil
}

// renderEntry formats one entry per the requested output format.
func renderEntry(e editor.ConsoleEntry, format string, includeStack bool) any {
	switch format {
	case "plain":
		return e.Message
	case "detailed":
		s := fmt.Sprintf("%s [%s] %s", e.Timestamp.Format("2006-01-02 15:04:05"), e.Level, e.Message)
		if includeStack && e.StackTrace != "" {
			s += "\n" + e.StackTrace
		}
		return s
	default: // json
		if !includeStack {
			e.StackTrace = ""
		}
		return e
	}
}
