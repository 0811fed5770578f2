// Package tools implements the editor-side command handlers that the
// bridge dispatches to: play-mode test execution, menu items, and console
// access. Each tool builds a command.Router over its recognized actions
// and delegates the actual work to the editor capabilities it is
// constructed with.
package tools

import (
	"context"
	"strings"
	"sync"

	"github.com/mooselabs/unitymcp/internal/clog"
	"github.com/mooselabs/unitymcp/internal/command"
	"github.com/mooselabs/unitymcp/internal/editor"
	"github.com/mooselabs/unitymcp/internal/history"
	"github.com/mooselabs/unitymcp/internal/moose"
)

// ToolPlayModeTests is the wire name of the play-mode test tool.
const ToolPlayModeTests = "run_play_mode_tests"

// PlayMode handles run_play_mode_tests commands: scheduling test runs on
// the Moose runner and reporting workflow status.
type PlayMode struct {
	runner moose.Runner
	env    editor.Environment

	mu        sync.Mutex
	hist      *history.Store
	activeRun string // history id of the run in flight, "" when none
}

// NewPlayMode creates the play-mode test tool over the given runner and
// editor environment.
func NewPlayMode(runner moose.Runner, env editor.Environment) *PlayMode {
	return &PlayMode{runner: runner, env: env}
}

// SetHistory attaches a run-history store. When set, scheduled runs and
// their outcomes are recorded. History failures are logged, never
// surfaced: recording is an observer, not a participant.
func (t *PlayMode) SetHistory(h *history.Store) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hist = h
}

// Router returns the action router for this tool.
//
// All four run actions share one handler: the narrowing is carried by the
// scope parameters, not the action name. The distinct names are kept for
// wire compatibility with existing clients.
func (t *PlayMode) Router() *command.Router {
	r := command.NewRouter(ToolPlayModeTests, "run")
	r.Handle("run", t.runTests)
	r.Handle("run_test_method", t.runTests)
	r.Handle("run_test_class", t.runTests)
	r.Handle("run_test_asmdef", t.runTests)
	r.Handle("status", t.status)
	return r
}

// runTests schedules a play-mode test run. Scope fields are accepted under
// both current and legacy misspelled parameter names; older clients still
// send the latter.
func (t *PlayMode) runTests(p command.Params) command.Response {
	assembly := p.String("test_assembly", "test_assambly")
	class := p.String("test_class", "test_clas")
	method := p.String("test_method")

	if assembly == "" && class == "" && method == "" {
		return command.Errorf("at least one of test_assembly, test_class or test_method is required; running all play mode tests is not supported")
	}

	// The runner resolves the assembly itself when a class or method is
	// given; passing both is an invalid combination downstream.
	sendAssembly := assembly
	if class != "" || method != "" {
		sendAssembly = ""
	}

	if err := t.runner.RunTest(false, sendAssembly, class, method); err != nil {
		return command.Errorf("%s", err)
	}

	t.recordStart(history.Scope{Assembly: assembly, Class: class, Method: method})

	return command.Successf("Play mode test run scheduled (%s)", describeScope(assembly, class, method))
}

// statusData is the payload for the status action. Result and summary are
// pointers so they serialize as explicit nulls until the run completes.
type statusData struct {
	WorkflowStatus string         `json:"workflow_status"`
	ErrorMessage   string         `json:"error_message,omitempty"`
	TestResult     *string        `json:"test_result"`
	TestSummary    *moose.Summary `json:"test_summary"`
	IsPlaying      bool           `json:"is_playing"`
	IsCompiling    bool           `json:"is_compiling"`
}

// status reports the current workflow status. Purely a read: results are
// embedded only once the workflow has completed.
func (t *PlayMode) status(p command.Params) command.Response {
	st, errMsg := t.runner.WorkflowStatusWithError()

	data := statusData{
		WorkflowStatus: st,
		ErrorMessage:   errMsg,
		IsPlaying:      t.env.IsPlaying(),
		IsCompiling:    t.env.IsCompiling(),
	}

	if st == moose.StatusCompleted {
		result := t.runner.ExecutionResult()
		summary := t.runner.ExecutionSummary()
		data.TestResult = &result
		data.TestSummary = &summary
		t.recordResult(st, result, summary)
	} else if st == moose.StatusError {
		t.recordResult(st, "", moose.Summary{})
	}

	return command.SuccessData("Workflow status: "+st, data)
}

// recordStart notes a newly scheduled run in the history store.
func (t *PlayMode) recordStart(scope history.Scope) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hist == nil {
		return
	}
	id, err := t.hist.RecordStart(context.Background(), scope)
	if err != nil {
		clog.Warn("history: record run start: %v", err)
		return
	}
	t.activeRun = id
}

// recordResult closes out the in-flight history entry, if any. The store
// ignores repeat results for an ended run, so observing COMPLETED from
// multiple status polls is harmless.
func (t *PlayMode) recordResult(status, result string, sum moose.Summary) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hist == nil || t.activeRun == "" {
		return
	}
	if err := t.hist.RecordResult(context.Background(), t.activeRun, status, result, sum); err != nil {
		clog.Warn("history: record run result: %v", err)
		return
	}
	t.activeRun = ""
}

// describeScope renders the requested scope for the scheduling message,
// from the fields the client actually provided.
func describeScope(assembly, class, method string) string {
	var parts []string
	if assembly != "" {
		parts = append(parts, "Assembly: "+assembly)
	}
	if class != "" {
		parts = append(parts, "Class: "+class)
	}
	if method != "" {
		parts = append(parts, "Method: "+method)
	}
	return strings.Join(parts, ", ")
}
