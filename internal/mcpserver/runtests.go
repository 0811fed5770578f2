package mcpserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mooselabs/unitymcp/internal/clog"
	"github.com/mooselabs/unitymcp/internal/command"
	"github.com/mooselabs/unitymcp/internal/moose"
	"github.com/mooselabs/unitymcp/internal/tools"
)

// Timeout bounds for the test completion wait, in seconds.
const (
	defaultTimeoutSeconds = 360
	maxTimeoutSeconds     = 600
)

// RunTestsInput is the argument schema for run_play_mode_tests.
type RunTestsInput struct {
	Action       string `json:"action" jsonschema:"Operation ('run_test_method', 'run_test_class', 'run_test_asmdef')"`
	TestAssembly string `json:"test_assembly,omitempty" jsonschema:"The assembly name (required for all actions)"`
	TestClass    string `json:"test_class,omitempty" jsonschema:"The class name (required for run_test_method and run_test_class)"`
	TestMethod   string `json:"test_method,omitempty" jsonschema:"The method name (required for run_test_method only)"`
	Timeout      int    `json:"timeout,omitempty" jsonschema:"Maximum time in seconds to wait for test completion (default: 360, max: 600)"`
}

// RunTestsOutput is the structured result of a completed run.
type RunTestsOutput struct {
	WorkflowStatus string         `json:"workflow_status"`
	TestExecuted   bool           `json:"test_executed"`
	TestResult     string         `json:"test_result,omitempty"`
	TestSummary    *moose.Summary `json:"test_summary,omitempty"`
}

// statusPayload mirrors the status action's data payload.
type statusPayload struct {
	WorkflowStatus string         `json:"workflow_status"`
	ErrorMessage   string         `json:"error_message"`
	TestResult     *string        `json:"test_result"`
	TestSummary    *moose.Summary `json:"test_summary"`
}

// runPlayModeTests schedules a run on the editor and waits for it to
// finish, polling the status action until completion or timeout.
func (s *Server) runPlayModeTests(ctx context.Context, req *mcp.CallToolRequest, in RunTestsInput) (*mcp.CallToolResult, RunTestsOutput, error) {
	s.record(tools.ToolPlayModeTests, in.Action)

	// The MCP surface is stricter than the editor handler: each action
	// names its exact scope so an agent cannot send ambiguous combinations.
	switch in.Action {
	case "run_test_method":
		if in.TestAssembly == "" || in.TestClass == "" || in.TestMethod == "" {
			return nil, RunTestsOutput{}, fmt.Errorf("run_test_method requires test_assembly, test_class and test_method parameters")
		}
	case "run_test_class":
		if in.TestAssembly == "" || in.TestClass == "" {
			return nil, RunTestsOutput{}, fmt.Errorf("run_test_class requires test_assembly and test_class parameters")
		}
		if in.TestMethod != "" {
			return nil, RunTestsOutput{}, fmt.Errorf("run_test_class cannot have test_method parameter. Use run_test_method for specific method testing")
		}
	case "run_test_asmdef":
		if in.TestAssembly == "" {
			return nil, RunTestsOutput{}, fmt.Errorf("run_test_asmdef requires test_assembly parameter")
		}
		if in.TestClass != "" || in.TestMethod != "" {
			return nil, RunTestsOutput{}, fmt.Errorf("run_test_asmdef cannot have test_class or test_method parameters. Use run_test_class or run_test_method for more specific testing")
		}
	default:
		return nil, RunTestsOutput{}, fmt.Errorf("unknown action: %q", in.Action)
	}

	params := command.Params{
		"action":        in.Action,
		"test_assembly": in.TestAssembly,
		"test_class":    in.TestClass,
		"test_method":   in.TestMethod,
	}
	// Narrower scopes clear the broader fields; the editor handler derives
	// the assembly itself when a class or method is given.
	if in.Action == "run_test_class" {
		params["test_method"] = ""
	}
	if in.Action == "run_test_asmdef" {
		params["test_class"] = ""
		params["test_method"] = ""
	}

	resp, err := s.client.Call(ctx, tools.ToolPlayModeTests, params)
	if err != nil {
		return nil, RunTestsOutput{}, fmt.Errorf("schedule test run: %w", err)
	}
	if !resp.Success {
		return nil, RunTestsOutput{}, fmt.Errorf("%s", resp.Error)
	}

	desc := describeRun(in)
	timeout := clampTimeout(in.Timeout)
	deadline := time.Now().Add(time.Duration(timeout) * time.Second)

	var lastStatus string
	testStarted := false

	for time.Now().Before(deadline) {
		payload, err := s.pollStatus(ctx)
		if err != nil {
			// The bridge restarts during domain reloads; keep polling.
			clog.Debug("status check failed (expected during domain reload): %v", err)
		} else {
			switch payload.WorkflowStatus {
			case moose.StatusError:
				return nil, RunTestsOutput{WorkflowStatus: payload.WorkflowStatus},
					fmt.Errorf("test execution failed: %s", payload.ErrorMessage)

			case moose.StatusRunningTest:
				if !testStarted {
					clog.Debug("test execution started: %s", desc)
				}
				testStarted = true

			case moose.StatusCompleted:
				out := RunTestsOutput{
					WorkflowStatus: payload.WorkflowStatus,
					TestExecuted:   true,
					TestSummary:    payload.TestSummary,
				}
				if payload.TestResult != nil {
					out.TestResult = *payload.TestResult
				}
				msg := completionMessage(desc, out, testStarted)
				return &mcp.CallToolResult{
					Content: []mcp.Content{&mcp.TextContent{Text: msg}},
				}, out, nil
			}

			if payload.WorkflowStatus != lastStatus {
				clog.Debug("workflow status: %s", payload.WorkflowStatus)
				lastStatus = payload.WorkflowStatus
			}
		}

		select {
		case <-ctx.Done():
			return nil, RunTestsOutput{}, ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}

	if testStarted {
		return nil, RunTestsOutput{}, fmt.Errorf("timeout (%ds) waiting for test to complete: %s (test was running)", timeout, desc)
	}
	return nil, RunTestsOutput{}, fmt.Errorf("timeout (%ds) waiting for test to start: %s", timeout, desc)
}

// pollStatus fetches and decodes one status snapshot.
func (s *Server) pollStatus(ctx context.Context) (statusPayload, error) {
	resp, err := s.client.Call(ctx, tools.ToolPlayModeTests, command.Params{"action": "status"})
	if err != nil {
		return statusPayload{}, err
	}
	if !resp.Success {
		return statusPayload{}, fmt.Errorf("%s", resp.Error)
	}
	var payload statusPayload
	if err := decodeData(resp.Data, &payload); err != nil {
		return statusPayload{}, err
	}
	return payload, nil
}

// clampTimeout bounds the caller's timeout to [1, 600] seconds, with a
// default of 360 when unset.
func clampTimeout(timeout int) int {
	if timeout == 0 {
		return defaultTimeoutSeconds
	}
	if timeout < 1 {
		return 1
	}
	if timeout > maxTimeoutSeconds {
		return maxTimeoutSeconds
	}
	return timeout
}

// describeRun renders the run scope for result messages.
func describeRun(in RunTestsInput) string {
	parts := []string{"Assembly: " + in.TestAssembly}
	if in.TestClass != "" {
		parts = append(parts, "Class: "+in.TestClass)
	}
	if in.TestMethod != "" {
		parts = append(parts, "Method: "+in.TestMethod)
	}
	return strings.Join(parts, ", ")
}

// completionMessage builds the human-readable completion line.
func completionMessage(desc string, out RunTestsOutput, testStarted bool) string {
	msg := fmt.Sprintf("Test execution completed: %s (Result: %s", desc, out.TestResult)
	if sum := out.TestSummary; sum != nil {
		msg += fmt.Sprintf(", Total: %d, Passed: %d, Failed: %d", sum.Total, sum.Passed, sum.Failed)
		if sum.NotRun > 0 {
			msg += fmt.Sprintf(", Not Run: %d", sum.NotRun)
		}
	}
	msg += ")"
	if !testStarted {
		msg += " (immediate completion)"
	}
	return msg
}
