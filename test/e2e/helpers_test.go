//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mooselabs/unitymcp/internal/bridge"
	"github.com/mooselabs/unitymcp/internal/command"
	"github.com/mooselabs/unitymcp/internal/moose"
	"github.com/mooselabs/unitymcp/internal/tools"
)

// newClient builds a bridge client pointed at the shared bridge. Retries
// are disabled; the bridge is already up when tests run.
func newClient() *bridge.Client {
	c := bridge.NewClient(bridgeAddr)
	c.RetryWindow = 0
	return c
}

// call sends one command and fails the test on a transport error.
func call(t *testing.T, tool string, params command.Params) command.Response {
	t.Helper()
	resp, err := newClient().Call(context.Background(), tool, params)
	if err != nil {
		t.Fatalf("Call(%s) error: %v", tool, err)
	}
	return resp
}

// workflowStatus mirrors the status action payload.
type workflowStatus struct {
	WorkflowStatus string         `json:"workflow_status"`
	ErrorMessage   string         `json:"error_message"`
	TestResult     *string        `json:"test_result"`
	TestSummary    *moose.Summary `json:"test_summary"`
	IsPlaying      bool           `json:"is_playing"`
	IsCompiling    bool           `json:"is_compiling"`
}

// fetchStatus runs one status command and decodes the payload.
func fetchStatus(t *testing.T) workflowStatus {
	t.Helper()
	resp := call(t, tools.ToolPlayModeTests, command.Params{"action": "status"})
	if !resp.Success {
		t.Fatalf("status failed: %s", resp.Error)
	}
	var st workflowStatus
	decodeData(t, resp.Data, &st)
	return st
}

// decodeData converts a loosely-typed response payload into out.
func decodeData(t *testing.T, data, out any) {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("encode data: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

// waitForCompletion polls the status action until the workflow completes
// or errors, with a hard deadline.
func waitForCompletion(t *testing.T) workflowStatus {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		st := fetchStatus(t)
		switch st.WorkflowStatus {
		case moose.StatusCompleted, moose.StatusError:
			return st
		}
		if time.Now().After(deadline) {
			t.Fatalf("run did not complete, last status %s", st.WorkflowStatus)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
