// Package moose defines the boundary to the MooseRunner play-mode test
// execution engine. The engine itself lives inside the Unity Editor; this
// package holds the interface commands are written against, the workflow
// status vocabulary, and a simulator for development and tests.
package moose

import "errors"

// Workflow statuses reported by the runner. A run moves PENDING ->
// RUNNING_TEST -> COMPLETED, or lands in ERROR at any point. IDLE means no
// run has been scheduled since startup.
const (
	StatusIdle        = "IDLE"
	StatusPending     = "PENDING"
	StatusRunningTest = "RUNNING_TEST"
	StatusCompleted   = "COMPLETED"
	StatusError       = "ERROR"
)

// Results reported for a completed run.
const (
	ResultPassed = "Passed"
	ResultFailed = "Failed"
)

// ErrRunInProgress is returned by RunTest while a previous run has not
// completed.
var ErrRunInProgress = errors.New("a test run is already in progress")

// ErrInvalidScope is returned by RunTest for a scope combination the
// runner hierarchy cannot execute.
var ErrInvalidScope = errors.New("invalid test scope combination")

// Summary is the count summary for a completed run.
// Invariant: Passed + Failed + NotRun <= Total.
type Summary struct {
	Status string `json:"status"`
	Total  int    `json:"total"`
	Passed int    `json:"passed"`
	Failed int    `json:"failed"`
	NotRun int    `json:"not_run"`
}

// Runner is the play-mode test execution capability. Execution is
// asynchronous: RunTest schedules a run and returns; progress is observed
// by polling the workflow status.
type Runner interface {
	// RunTest schedules a test run. With rootSelected the whole project
	// is run and the scope fields must be empty; otherwise at least one
	// scope field must be set, and assembly must be empty whenever class
	// or method is set (the runner resolves the assembly itself).
	// Returns an error for invalid combinations or when a run is already
	// in progress.
	RunTest(rootSelected bool, assembly, class, method string) error

	// WorkflowStatus returns the current workflow status.
	WorkflowStatus() string

	// WorkflowStatusWithError returns the current workflow status and,
	// when the status is ERROR, the error message.
	WorkflowStatusWithError() (status, errMsg string)

	// ExecutionResult returns the overall result of the last completed
	// run (Passed/Failed), or "" when no run has completed.
	ExecutionResult() string

	// ExecutionSummary returns the count summary of the last completed
	// run. The zero Summary is returned when no run has completed.
	ExecutionSummary() Summary
}
