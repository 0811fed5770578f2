package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mooselabs/unitymcp/internal/bridge"
	"github.com/mooselabs/unitymcp/internal/command"
	"github.com/mooselabs/unitymcp/internal/moose"
	"github.com/mooselabs/unitymcp/internal/term"
	"github.com/mooselabs/unitymcp/internal/tools"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the test workflow and editor status",
	Long: `Show the current play mode test workflow status, the editor
play/compile flags, and the result of the last completed run.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// runStatus is the one-shot frontend for the status action.
func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := newBridgeClient(cfg)

	st, err := fetchStatus(cmd.Context(), client)
	if err != nil {
		return err
	}

	term.Printf("Workflow:  %s\n", st.WorkflowStatus)
	term.Printf("Playing:   %t\n", st.IsPlaying)
	term.Printf("Compiling: %t\n", st.IsCompiling)
	if st.ErrorMessage != "" {
		term.Printf("Error:     %s\n", st.ErrorMessage)
	}
	if st.TestResult != nil {
		term.Printf("Result:    %s\n", *st.TestResult)
	}
	if st.TestSummary != nil {
		s := st.TestSummary
		term.Printf("Summary:   total %d, passed %d, failed %d, not run %d\n",
			s.Total, s.Passed, s.Failed, s.NotRun)
	}
	return nil
}

// workflowStatus mirrors the status action payload. Result and summary
// stay nil until a run has completed.
type workflowStatus struct {
	WorkflowStatus string         `json:"workflow_status"`
	ErrorMessage   string         `json:"error_message"`
	TestResult     *string        `json:"test_result"`
	TestSummary    *moose.Summary `json:"test_summary"`
	IsPlaying      bool           `json:"is_playing"`
	IsCompiling    bool           `json:"is_compiling"`
}

// fetchStatus runs one status command against the bridge and decodes the
// payload.
func fetchStatus(ctx context.Context, client *bridge.Client) (*workflowStatus, error) {
	resp, err := client.Call(ctx, tools.ToolPlayModeTests, command.Params{"action": "status"})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%s", resp.Error)
	}
	var st workflowStatus
	if err := decodeData(resp.Data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// decodeData converts a loosely-typed response payload into a typed
// structure via a JSON round trip.
func decodeData(data, out any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode response data: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
