package provision

import (
	"context"
	"errors"
	"testing"
)

func TestPlanner_ChecksEveryStep(t *testing.T) {
	satisfied := newConfigurableStep("database:create:x")
	satisfied.checkFn = func(_ RunContext) (StepStatus, error) {
		return StatusSatisfied, nil
	}
	pending := newConfigurableStep("verdi:profile:x")
	diag := newConfigurableStep("verdi:status")
	diag.diagnostic = true

	plan, err := NewPlanner().Plan(context.Background(), []Step{satisfied, pending, diag})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	if plan.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", plan.Len())
	}
	if plan.Entries()[0].Status() != StatusSatisfied {
		t.Errorf("entry 0 status = %v, want %v", plan.Entries()[0].Status(), StatusSatisfied)
	}
	if plan.Entries()[1].Status() != StatusNeedsApply {
		t.Errorf("entry 1 status = %v, want %v", plan.Entries()[1].Status(), StatusNeedsApply)
	}
	if plan.Entries()[2].Status() != StatusNeedsApply {
		t.Errorf("diagnostic entry status = %v, want %v (always runs)", plan.Entries()[2].Status(), StatusNeedsApply)
	}
	if diag.applyCalls != 0 {
		t.Error("planning must not apply anything")
	}

	summary := plan.Summary()
	if summary.Total != 3 || summary.Satisfied != 1 || summary.NeedsApply != 2 {
		t.Errorf("Summary() = %+v, want total 3, satisfied 1, needs-apply 2", summary)
	}
}

func TestPlanner_CheckErrorAborts(t *testing.T) {
	bad := newConfigurableStep("database:create:x")
	bad.checkFn = func(_ RunContext) (StepStatus, error) {
		return StatusUnknown, errors.New("connection refused")
	}

	if _, err := NewPlanner().Plan(context.Background(), []Step{bad}); err == nil {
		t.Error("Plan() should propagate check errors")
	}
}

func TestStepStatus_IsTerminal(t *testing.T) {
	terminal := []StepStatus{StatusSatisfied, StatusFailed, StatusSkipped}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%v should be terminal", s)
		}
	}
	for _, s := range []StepStatus{StatusNeedsApply, StatusUnknown} {
		if s.IsTerminal() {
			t.Errorf("%v should not be terminal", s)
		}
	}
}

func TestStepFailure_Error(t *testing.T) {
	underlying := errors.New("exit status 2")
	failure := &StepFailure{
		StepID:     MustNewStepID("verdi:profile:x"),
		Diagnostic: "Critical: invalid argument",
		Err:        underlying,
	}

	msg := failure.Error()
	if msg == "" {
		t.Fatal("Error() should not be empty")
	}
	if !errors.Is(failure, underlying) {
		t.Error("Unwrap() should expose the underlying error")
	}
}
