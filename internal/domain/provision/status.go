package provision

// StepStatus represents the current state of a step.
type StepStatus string

const (
	// StatusSatisfied indicates the step's desired state is already met.
	StatusSatisfied StepStatus = "satisfied"
	// StatusNeedsApply indicates the step needs to be applied.
	StatusNeedsApply StepStatus = "needs-apply"
	// StatusUnknown indicates the step's state could not be determined.
	StatusUnknown StepStatus = "unknown"
	// StatusFailed indicates the step failed during check or apply.
	StatusFailed StepStatus = "failed"
	// StatusSkipped indicates the step was skipped (e.g., dependency failed).
	StatusSkipped StepStatus = "skipped"
)

// String returns the string representation of the status.
func (s StepStatus) String() string {
	return string(s)
}

// IsTerminal returns true if this status represents a final per-run state.
func (s StepStatus) IsTerminal() bool {
	switch s {
	case StatusSatisfied, StatusFailed, StatusSkipped:
		return true
	case StatusNeedsApply, StatusUnknown:
		return false
	}
	return false
}

// RunState represents the lifecycle state of a provisioning run.
type RunState string

const (
	// RunPending indicates the run has not started yet.
	RunPending RunState = "pending"
	// RunRunning indicates steps are executing.
	RunRunning RunState = "running"
	// RunCompleted indicates all steps finished without a fatal failure.
	RunCompleted RunState = "completed"
	// RunFailed indicates the run halted at a fatal step failure.
	RunFailed RunState = "failed"
)

// String returns the string representation of the run state.
func (s RunState) String() string {
	return string(s)
}
