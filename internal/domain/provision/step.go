// Package provision implements the idempotent provisioning sequencer.
package provision

// Step represents one idempotent unit of provisioning.
// Steps are totally ordered; a step's guard may depend on side effects of
// earlier steps, so guards are only evaluated once all earlier steps have
// completed.
type Step interface {
	// ID returns the unique identifier for this step.
	ID() StepID

	// DependsOn returns the IDs of steps that must succeed before this one.
	DependsOn() []StepID

	// Check evaluates the step's guard.
	// Returns StatusSatisfied if the desired end-state already exists and
	// the action must be skipped, StatusNeedsApply otherwise. A probe
	// command's non-zero exit is interpreted here as "resource absent"
	// and never surfaces as an error.
	Check(ctx RunContext) (StepStatus, error)

	// Apply performs the step's action.
	// Captured output goes into the RunContext keyed by the step's ID.
	Apply(ctx RunContext) error
}

// QuietStep marks steps whose captured output may contain secrets.
// The sequencer and the report suppress the output of quiet steps.
type QuietStep interface {
	Step

	// Quiet returns true when the step's output must not be logged.
	Quiet() bool
}

// DiagnosticStep marks read-only steps whose result is surfaced for
// operator inspection but can never fail the run. The final status query
// is a diagnostic step.
type DiagnosticStep interface {
	Step

	// Diagnostic returns true when the step is purely informational.
	Diagnostic() bool
}

// IsQuiet reports whether the step's output must be suppressed.
func IsQuiet(step Step) bool {
	q, ok := step.(QuietStep)
	return ok && q.Quiet()
}

// IsDiagnostic reports whether the step is purely informational.
func IsDiagnostic(step Step) bool {
	d, ok := step.(DiagnosticStep)
	return ok && d.Diagnostic()
}
