package moose

import (
	"fmt"
	"sync"
	"time"
)

// PlayModeHost is the slice of the editor environment the simulator
// drives: entering and leaving play mode around a run.
type PlayModeHost interface {
	SetPlaying(bool)
}

// Sim is an in-process Runner that walks a scheduled run through the
// workflow states on a timer. Counts are derived from the requested scope
// so results are deterministic for tests.
type Sim struct {
	mu sync.Mutex

	// StepDelay is the pause between workflow transitions.
	stepDelay time.Duration

	host PlayModeHost

	status    string
	errMsg    string
	result    string
	summary   Summary
	failNext  string
	runActive bool
}

// SimOption configures a Sim.
type SimOption func(*Sim)

// WithStepDelay sets the pause between workflow transitions.
// The default is 50ms; tests use a smaller value.
func WithStepDelay(d time.Duration) SimOption {
	return func(s *Sim) { s.stepDelay = d }
}

// WithPlayModeHost attaches an editor environment whose play-mode flag is
// driven while a run executes.
func WithPlayModeHost(h PlayModeHost) SimOption {
	return func(s *Sim) { s.host = h }
}

// NewSim creates a simulated runner in the IDLE state.
func NewSim(opts ...SimOption) *Sim {
	s := &Sim{
		stepDelay: 50 * time.Millisecond,
		status:    StatusIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FailNext makes the next scheduled run end in ERROR with the given
// message instead of completing.
func (s *Sim) FailNext(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = msg
}

// RunTest schedules a simulated run.
func (s *Sim) RunTest(rootSelected bool, assembly, class, method string) error {
	if rootSelected {
		return fmt.Errorf("%w: running all tests in the project is not supported", ErrInvalidScope)
	}
	if assembly == "" && class == "" && method == "" {
		return fmt.Errorf("%w: no test scope given", ErrInvalidScope)
	}
	if assembly != "" && (class != "" || method != "") {
		return fmt.Errorf("%w: assembly must not be combined with class or method", ErrInvalidScope)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runActive {
		return ErrRunInProgress
	}
	s.runActive = true
	s.status = StatusPending
	s.errMsg = ""

	failMsg := s.failNext
	s.failNext = ""

	total := scopeSize(assembly, class, method)
	go s.execute(total, failMsg)
	return nil
}

// scopeSize fabricates a deterministic test count for a scope.
func scopeSize(assembly, class, method string) int {
	switch {
	case method != "":
		return 1
	case class != "":
		return 4
	default:
		return 12
	}
}

// execute walks the workflow states for one run.
func (s *Sim) execute(total int, failMsg string) {
	time.Sleep(s.stepDelay)

	s.mu.Lock()
	s.status = StatusRunningTest
	host := s.host
	s.mu.Unlock()

	if host != nil {
		host.SetPlaying(true)
	}

	time.Sleep(s.stepDelay)

	if host != nil {
		host.SetPlaying(false)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runActive = false

	if failMsg != "" {
		s.status = StatusError
		s.errMsg = failMsg
		return
	}

	s.status = StatusCompleted
	s.result = ResultPassed
	s.summary = Summary{
		Status: ResultPassed,
		Total:  total,
		Passed: total,
	}
}

// WorkflowStatus returns the current workflow status.
func (s *Sim) WorkflowStatus() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// WorkflowStatusWithError returns the current status and error message.
func (s *Sim) WorkflowStatusWithError() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.errMsg
}

// ExecutionResult returns the result of the last completed run.
func (s *Sim) ExecutionResult() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// ExecutionSummary returns the summary of the last completed run.
func (s *Sim) ExecutionSummary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}
