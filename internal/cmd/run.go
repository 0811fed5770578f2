package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mooselabs/unitymcp/internal/bridge"
	"github.com/mooselabs/unitymcp/internal/command"
	"github.com/mooselabs/unitymcp/internal/moose"
	"github.com/mooselabs/unitymcp/internal/term"
	"github.com/mooselabs/unitymcp/internal/tools"
)

var (
	flagRunAssembly string
	flagRunClass    string
	flagRunMethod   string
	flagRunTimeout  int
	flagRunNoWait   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run play mode tests",
	Long: `Schedule a play mode test run and wait for it to finish.

At least one of --assembly, --class or --method must be given; running
every test in the project is not supported. When --class or --method is
set the runner resolves the containing assembly itself and --assembly
only narrows which run is scheduled.`,
	Example: `  unitymcp run --class FooTests
  unitymcp run --class FooTests --method Bar
  unitymcp run --assembly Game.Tests --no-wait`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagRunAssembly, "assembly", "", "test assembly to run")
	runCmd.Flags().StringVar(&flagRunClass, "class", "", "test class to run")
	runCmd.Flags().StringVar(&flagRunMethod, "method", "", "test method to run")
	runCmd.Flags().IntVar(&flagRunTimeout, "timeout", 360, "seconds to wait for completion")
	runCmd.Flags().BoolVar(&flagRunNoWait, "no-wait", false, "schedule the run and return immediately")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if flagRunAssembly == "" && flagRunClass == "" && flagRunMethod == "" {
		return fmt.Errorf("at least one of --assembly, --class or --method is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := newBridgeClient(cfg)

	params := command.Params{"action": "run"}
	if flagRunAssembly != "" {
		params["test_assembly"] = flagRunAssembly
	}
	if flagRunClass != "" {
		params["test_class"] = flagRunClass
	}
	if flagRunMethod != "" {
		params["test_method"] = flagRunMethod
	}

	resp, err := client.Call(cmd.Context(), tools.ToolPlayModeTests, params)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}
	term.Println(resp.Message)

	if flagRunNoWait {
		return nil
	}
	return waitForRun(cmd, client, flagRunTimeout)
}

// waitForRun polls the workflow status until the run completes, errors or
// the timeout elapses. Status failures are tolerated while polling: the
// bridge restarts across domain reloads.
func waitForRun(cmd *cobra.Command, client *bridge.Client, timeoutSeconds int) error {
	if timeoutSeconds < 1 {
		timeoutSeconds = 1
	}
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	lastStatus := ""

	for {
		st, err := fetchStatus(cmd.Context(), client)
		if err == nil {
			if st.WorkflowStatus != lastStatus {
				term.Printf("Status: %s\n", st.WorkflowStatus)
				lastStatus = st.WorkflowStatus
			}
			switch st.WorkflowStatus {
			case moose.StatusError:
				return fmt.Errorf("test execution failed: %s", st.ErrorMessage)
			case moose.StatusCompleted:
				printRunResult(st)
				if st.TestResult != nil && *st.TestResult != moose.ResultPassed {
					return NewExitCodeError(1)
				}
				return nil
			}
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("timeout (%ds) waiting for test to complete", timeoutSeconds)
		}
		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// printRunResult prints the outcome of a completed run.
func printRunResult(st *workflowStatus) {
	result := ""
	if st.TestResult != nil {
		result = *st.TestResult
	}
	term.Printf("Result: %s\n", result)
	if st.TestSummary != nil {
		s := st.TestSummary
		term.Printf("Total: %d, Passed: %d, Failed: %d, Not run: %d\n",
			s.Total, s.Passed, s.Failed, s.NotRun)
	}
}
