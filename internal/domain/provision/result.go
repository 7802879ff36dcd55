package provision

import (
	"time"

	"github.com/google/uuid"
)

// StepResult captures the outcome of executing a single step.
type StepResult struct {
	stepID   StepID
	status   StepStatus
	err      error
	duration time.Duration
	output   string
	quiet    bool
	changed  bool
}

// NewStepResult creates a new StepResult.
func NewStepResult(stepID StepID, status StepStatus, err error) StepResult {
	return StepResult{
		stepID: stepID,
		status: status,
		err:    err,
	}
}

// StepID returns the ID of the step that was executed.
func (r StepResult) StepID() StepID {
	return r.stepID
}

// Status returns the final status of the step.
func (r StepResult) Status() StepStatus {
	return r.status
}

// Error returns any error that occurred during execution.
func (r StepResult) Error() error {
	return r.err
}

// Duration returns how long the step took to execute.
func (r StepResult) Duration() time.Duration {
	return r.duration
}

// Output returns the step's captured text, empty for quiet steps when
// accessed through DisplayOutput.
func (r StepResult) Output() string {
	return r.output
}

// DisplayOutput returns the captured text safe for logging and reports.
func (r StepResult) DisplayOutput() string {
	if r.quiet {
		return ""
	}
	return r.output
}

// Quiet returns true when the step's output must not be displayed.
func (r StepResult) Quiet() bool {
	return r.quiet
}

// Changed returns true when the step actually performed its action.
func (r StepResult) Changed() bool {
	return r.changed
}

// Success returns true if the step completed successfully.
func (r StepResult) Success() bool {
	return r.status == StatusSatisfied
}

// Skipped returns true if the step was skipped.
func (r StepResult) Skipped() bool {
	return r.status == StatusSkipped
}

// WithDuration returns a new StepResult with duration set.
func (r StepResult) WithDuration(d time.Duration) StepResult {
	r.duration = d
	return r
}

// WithOutput returns a new StepResult with captured output set.
func (r StepResult) WithOutput(output string) StepResult {
	r.output = output
	return r
}

// WithQuiet returns a new StepResult with the quiet flag set.
func (r StepResult) WithQuiet(quiet bool) StepResult {
	r.quiet = quiet
	return r
}

// WithChanged returns a new StepResult with the changed flag set.
func (r StepResult) WithChanged(changed bool) StepResult {
	r.changed = changed
	return r
}

// RunResult is the outcome of a full sequencer run.
type RunResult struct {
	// RunID identifies this run in logs.
	RunID uuid.UUID
	// State is the terminal run state, RunCompleted or RunFailed.
	State RunState
	// Results holds one entry per step that was reached.
	Results []StepResult
	// Failure describes the first fatal step failure, nil on completion.
	Failure *StepFailure
	// Diagnostic is the output of the final read-only status query.
	// It never influences State.
	Diagnostic string
}

// Completed returns true if the run finished without a fatal failure.
func (r RunResult) Completed() bool {
	return r.State == RunCompleted
}

// Failed returns true if the run halted at a fatal failure.
func (r RunResult) Failed() bool {
	return r.State == RunFailed
}

// Changed returns true if any step actually performed its action.
func (r RunResult) Changed() bool {
	for _, res := range r.Results {
		if res.Changed() {
			return true
		}
	}
	return false
}
