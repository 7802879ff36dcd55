package provision

import (
	"context"
	"fmt"
)

// PlanEntry represents a single step's planned execution.
type PlanEntry struct {
	step   Step
	status StepStatus
}

// NewPlanEntry creates a new PlanEntry.
func NewPlanEntry(step Step, status StepStatus) PlanEntry {
	return PlanEntry{
		step:   step,
		status: status,
	}
}

// Step returns the step to be executed.
func (e PlanEntry) Step() Step {
	return e.step
}

// Status returns the checked status of the step.
func (e PlanEntry) Status() StepStatus {
	return e.status
}

// PlanSummary provides aggregate statistics about a plan.
type PlanSummary struct {
	Total      int
	NeedsApply int
	Satisfied  int
	Unknown    int
}

// Plan represents the checked state of all steps before a run.
type Plan struct {
	entries []PlanEntry
}

// NewPlan creates an empty Plan.
func NewPlan() *Plan {
	return &Plan{
		entries: make([]PlanEntry, 0),
	}
}

// Add appends a plan entry.
func (p *Plan) Add(entry PlanEntry) {
	p.entries = append(p.entries, entry)
}

// Len returns the number of entries.
func (p *Plan) Len() int {
	return len(p.entries)
}

// Entries returns all plan entries.
func (p *Plan) Entries() []PlanEntry {
	return p.entries
}

// Summary aggregates the entry statuses.
func (p *Plan) Summary() PlanSummary {
	summary := PlanSummary{Total: len(p.entries)}
	for _, e := range p.entries {
		switch e.status {
		case StatusSatisfied:
			summary.Satisfied++
		case StatusNeedsApply:
			summary.NeedsApply++
		case StatusUnknown, StatusFailed, StatusSkipped:
			summary.Unknown++
		}
	}
	return summary
}

// Planner previews a run by evaluating every step's guard up front.
//
// The preview is advisory: the sequencer re-evaluates each guard in order
// during the real run, because later guards depend on side effects of
// earlier steps. A freshly checked plan can therefore differ from what a
// run actually applies.
type Planner struct{}

// NewPlanner creates a new Planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// Plan checks each step in order and records its current status.
// Diagnostic steps always run, so they are reported as needs-apply.
func (p *Planner) Plan(ctx context.Context, steps []Step) (*Plan, error) {
	plan := NewPlan()
	runCtx := NewRunContext(ctx)

	for _, step := range steps {
		if IsDiagnostic(step) {
			plan.Add(NewPlanEntry(step, StatusNeedsApply))
			continue
		}

		status, err := step.Check(runCtx)
		if err != nil {
			return nil, fmt.Errorf("check step %q: %w", step.ID().String(), err)
		}
		plan.Add(NewPlanEntry(step, status))
	}

	return plan, nil
}
