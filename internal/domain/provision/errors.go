package provision

import "fmt"

// StepFailure describes the first fatal step failure of a run.
// Probe guards that exit non-zero never produce a StepFailure; only a
// real fault during check or apply does.
type StepFailure struct {
	StepID     StepID
	Diagnostic string
	Err        error
}

// Error returns the formatted failure message with the step name attached.
func (e *StepFailure) Error() string {
	if e.Diagnostic != "" {
		return fmt.Sprintf("step %s failed: %v: %s", e.StepID.String(), e.Err, e.Diagnostic)
	}
	return fmt.Sprintf("step %s failed: %v", e.StepID.String(), e.Err)
}

// Unwrap returns the underlying error.
func (e *StepFailure) Unwrap() error {
	return e.Err
}
