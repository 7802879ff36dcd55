package provision

import "context"

// RunContext provides shared state for step execution.
// It carries the cancellation context, the dry-run flag, and the captured
// output of completed steps. A later step's guard may read the output of
// an earlier one. The context is created at run start and discarded at
// run end.
type RunContext struct {
	ctx     context.Context
	dryRun  bool
	outputs map[string]string
}

// NewRunContext creates a new RunContext with the given context.
func NewRunContext(ctx context.Context) RunContext {
	return RunContext{
		ctx:     ctx,
		outputs: make(map[string]string),
	}
}

// Context returns the underlying context.Context.
func (r RunContext) Context() context.Context {
	return r.ctx
}

// DryRun returns whether this is a dry-run execution.
func (r RunContext) DryRun() bool {
	return r.dryRun
}

// WithDryRun returns a new RunContext with the dry-run flag set.
// The output store is shared with the original.
func (r RunContext) WithDryRun(dryRun bool) RunContext {
	return RunContext{
		ctx:     r.ctx,
		dryRun:  dryRun,
		outputs: r.outputs,
	}
}

// SetOutput records the captured output of a step.
func (r RunContext) SetOutput(id StepID, text string) {
	r.outputs[id.String()] = text
}

// Output returns the captured output of an earlier step.
func (r RunContext) Output(id StepID) (string, bool) {
	text, ok := r.outputs[id.String()]
	return text, ok
}
