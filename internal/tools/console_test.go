package tools

import (
	"strings"
	"testing"

	"github.com/mooselabs/unitymcp/internal/command"
	"github.com/mooselabs/unitymcp/internal/editor"
)

func seededConsole() *editor.Sim {
	sim := editor.NewSim()
	sim.Log(editor.ConsoleLog, "scene loaded", "")
	sim.Log(editor.ConsoleWarning, "missing reference on Player", "")
	sim.Log(editor.ConsoleError, "NullReferenceException in Update", "at Player.Update()")
	sim.Log(editor.ConsoleError, "shader compilation failed", "")
	return sim
}

func consoleLines(t *testing.T, resp command.Response) []any {
	t.Helper()
	if !resp.Success {
		t.Fatalf("Dispatch() error = %q", resp.Error)
	}
	return resp.Data.(map[string]any)["lines"].([]any)
}

func TestConsoleGetDefaultsToErrors(t *testing.T) {
	router := NewConsole(seededConsole()).Router()

	// get is also the fallback action.
	lines := consoleLines(t, router.Dispatch(command.Params{}))
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 errors", len(lines))
	}
	for _, line := range lines {
		if line.(editor.ConsoleEntry).Level != editor.ConsoleError {
			t.Errorf("non-error entry in default output: %v", line)
		}
	}
}

func TestConsoleGetAllTypes(t *testing.T) {
	router := NewConsole(seededConsole()).Router()

	lines := consoleLines(t, router.Dispatch(command.Params{"action": "get", "types": "all"}))
	if len(lines) != 4 {
		t.Errorf("got %d lines, want 4", len(lines))
	}
}

func TestConsoleGetTypeList(t *testing.T) {
	router := NewConsole(seededConsole()).Router()

	lines := consoleLines(t, router.Dispatch(command.Params{
		"action": "get",
		"types":  []any{"warning", "log"},
	}))
	if len(lines) != 2 {
		t.Errorf("got %d lines, want 2", len(lines))
	}
}

func TestConsoleGetUnknownType(t *testing.T) {
	router := NewConsole(seededConsole()).Router()

	resp := router.Dispatch(command.Params{"action": "get", "types": "verbose"})
	if resp.Success {
		t.Fatal("unknown type should fail")
	}
	if !strings.Contains(resp.Error, "verbose") {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestConsoleGetFilterText(t *testing.T) {
	router := NewConsole(seededConsole()).Router()

	lines := consoleLines(t, router.Dispatch(command.Params{
		"action":      "get",
		"types":       "all",
		"filter_text": "SHADER",
	}))
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if !strings.Contains(lines[0].(editor.ConsoleEntry).Message, "shader") {
		t.Errorf("wrong entry matched: %v", lines[0])
	}
}

func TestConsoleGetCountKeepsNewest(t *testing.T) {
	router := NewConsole(seededConsole()).Router()

	lines := consoleLines(t, router.Dispatch(command.Params{
		"action": "get",
		"types":  "all",
		"count":  2,
	}))
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[1].(editor.ConsoleEntry).Message != "shader compilation failed" {
		t.Errorf("newest entry not kept: %v", lines[1])
	}
}

func TestConsoleGetPlainFormat(t *testing.T) {
	router := NewConsole(seededConsole()).Router()

	lines := consoleLines(t, router.Dispatch(command.Params{
		"action": "get",
		"format": "plain",
	}))
	if _, ok := lines[0].(string); !ok {
		t.Fatalf("plain format should yield strings, got %T", lines[0])
	}
	if lines[0].(string) != "NullReferenceException in Update" {
		t.Errorf("line = %q", lines[0])
	}
}

func TestConsoleGetDetailedFormat(t *testing.T) {
	router := NewConsole(seededConsole()).Router()

	lines := consoleLines(t, router.Dispatch(command.Params{
		"action": "get",
		"format": "detailed",
	}))
	s := lines[0].(string)
	if !strings.Contains(s, "[error]") || !strings.Contains(s, "at Player.Update()") {
		t.Errorf("detailed line = %q", s)
	}

	// Stacktrace suppressed on request.
	lines = consoleLines(t, router.Dispatch(command.Params{
		"action":             "get",
		"format":             "detailed",
		"include_stacktrace": false,
	}))
	if strings.Contains(lines[0].(string), "Player.Update") {
		t.Errorf("stacktrace not suppressed: %q", lines[0])
	}
}

func TestConsoleGetStripsStackFromJSON(t *testing.T) {
	router := NewConsole(seededConsole()).Router()

	lines := consoleLines(t, router.Dispatch(command.Params{
		"action":             "get",
		"include_stacktrace": false,
	}))
	if lines[0].(editor.ConsoleEntry).StackTrace != "" {
		t.Error("stacktrace should be stripped")
	}
}

func TestConsoleGetBadFormat(t *testing.T) {
	router := NewConsole(seededConsole()).Router()

	resp := router.Dispatch(command.Params{"action": "get", "format": "xml"})
	if resp.Success {
		t.Fatal("unknown format should fail")
	}
}

func TestConsoleGetNegativeCount(t *testing.T) {
	router := NewConsole(seededConsole()).Router()

	resp := router.Dispatch(command.Params{"action": "get", "count": -1})
	if resp.Success {
		t.Fatal("negative count should fail")
	}
}

func TestConsoleClear(t *testing.T) {
	sim := seededConsole()
	router := NewConsole(sim).Router()

	resp := router.Dispatch(command.Params{"action": "clear"})
	if !resp.Success {
		t.Fatalf("clear error = %q", resp.Error)
	}
	if len(sim.ConsoleEntries()) != 0 {
		t.Error("console not cleared")
	}

	lines := consoleLines(t, router.Dispatch(command.Params{"action": "get", "types": "all"}))
	if len(lines) != 0 {
		t.Errorf("got %d lines after clear", len(lines))
	}
}
