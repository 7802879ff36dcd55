package provision

import (
	"context"
	"time"

	"github.com/felixgeelhaar/statekit"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/flowprep/internal/ports"
)

// Events for the run lifecycle state machine.
const (
	eventStart    = "START"
	eventComplete = "COMPLETE"
	eventFail     = "FAIL"
)

// runContext is the statekit context type for the run lifecycle machine.
type runContext struct {
	StartedAt time.Time
}

// buildRunMachine constructs the run lifecycle machine.
// PENDING -> RUNNING -> {COMPLETED, FAILED}; terminal states have no
// outgoing transitions, so a finished run can never restart.
func buildRunMachine() (*statekit.Interpreter[runContext], error) {
	machine, err := statekit.NewMachine[runContext]("flowprep-run").
		WithInitial(statekit.StateID(RunPending.String())).
		WithContext(runContext{}).
		WithAction("recordStart", func(c *runContext, _ statekit.Event) {
			c.StartedAt = time.Now()
		}).
		State(statekit.StateID(RunPending.String())).
		On(eventStart).Target(statekit.StateID(RunRunning.String())).Done().
		State(statekit.StateID(RunRunning.String())).
		OnEntry("recordStart").
		On(eventComplete).Target(statekit.StateID(RunCompleted.String())).
		On(eventFail).Target(statekit.StateID(RunFailed.String())).Done().
		State(statekit.StateID(RunCompleted.String())).Done().
		State(statekit.StateID(RunFailed.String())).Done().
		Build()
	if err != nil {
		return nil, err
	}

	return statekit.NewInterpreter(machine), nil
}

// Sequencer executes an ordered list of idempotent steps against one
// target, short-circuiting each step whose end-state already exists.
// Execution is strictly sequential; there are no retries and no rollback.
type Sequencer struct {
	logger ports.Logger
	dryRun bool
}

// NewSequencer creates a new Sequencer.
func NewSequencer(logger ports.Logger) *Sequencer {
	return &Sequencer{logger: logger}
}

// WithDryRun returns a Sequencer that reports what would change without
// applying anything.
func (s *Sequencer) WithDryRun(dryRun bool) *Sequencer {
	return &Sequencer{
		logger: s.logger,
		dryRun: dryRun,
	}
}

// Run executes all steps in order and returns the terminal run result.
//
// Each step's guard is evaluated only after all earlier steps completed.
// The first fatal failure halts the run; steps after it never execute.
// Diagnostic steps are reported but can never fail the run. A canceled
// context stops the run without marking the interrupted step completed.
func (s *Sequencer) Run(ctx context.Context, steps []Step) RunResult {
	runID := uuid.New()
	log := s.logger.With(ports.F("run_id", runID.String()))

	interp, err := buildRunMachine()
	if err != nil {
		// Machine definition is static; this only fires on a programming error.
		return RunResult{
			RunID:   runID,
			State:   RunFailed,
			Failure: &StepFailure{Err: err},
		}
	}
	interp.Start()
	defer interp.Stop()
	interp.Send(statekit.Event{Type: eventStart})

	runCtx := NewRunContext(ctx).WithDryRun(s.dryRun)
	results := make([]StepResult, 0, len(steps))
	failed := make(map[string]bool)

	var failure *StepFailure
	var diagnostic string

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			// Interrupted: the current step is not marked completed.
			failure = &StepFailure{StepID: step.ID(), Err: err}
			break
		}

		result := s.runStep(runCtx, step, failed, log)
		results = append(results, result)

		if IsDiagnostic(step) {
			diagnostic = result.Output()
			continue
		}

		if result.Status() == StatusFailed {
			failed[step.ID().String()] = true
			failure = &StepFailure{
				StepID:     step.ID(),
				Diagnostic: result.DisplayOutput(),
				Err:        result.Error(),
			}
			break
		}
	}

	if failure != nil {
		interp.Send(statekit.Event{Type: eventFail})
		log.Error(ctx, "run failed",
			ports.F("step", failure.StepID.String()),
			ports.F("error", failure.Err))
	} else {
		interp.Send(statekit.Event{Type: eventComplete})
		log.Info(ctx, "run completed", ports.F("steps", len(results)))
	}

	return RunResult{
		RunID:      runID,
		State:      RunState(interp.State().Value),
		Results:    results,
		Failure:    failure,
		Diagnostic: diagnostic,
	}
}

// runStep executes a single step.
func (s *Sequencer) runStep(runCtx RunContext, step Step, failed map[string]bool, log ports.Logger) StepResult {
	id := step.ID()

	for _, dep := range step.DependsOn() {
		if failed[dep.String()] {
			log.Debug(runCtx.Context(), "step skipped", ports.F("step", id.String()),
				ports.F("failed_dependency", dep.String()))
			return NewStepResult(id, StatusSkipped, nil)
		}
	}

	if IsDiagnostic(step) {
		return s.runDiagnostic(runCtx, step, log)
	}

	status, err := step.Check(runCtx)
	if err != nil {
		return NewStepResult(id, StatusFailed, err)
	}

	if status == StatusSatisfied {
		log.Info(runCtx.Context(), "step already satisfied", ports.F("step", id.String()))
		return NewStepResult(id, StatusSatisfied, nil)
	}

	if runCtx.DryRun() {
		log.Info(runCtx.Context(), "step would apply", ports.F("step", id.String()))
		return NewStepResult(id, StatusNeedsApply, nil)
	}

	quiet := IsQuiet(step)

	start := time.Now()
	err = step.Apply(runCtx)
	duration := time.Since(start)

	output, _ := runCtx.Output(id)
	if err != nil {
		log.Error(runCtx.Context(), "step failed",
			ports.F("step", id.String()), ports.F("error", err))
		return NewStepResult(id, StatusFailed, err).
			WithDuration(duration).
			WithOutput(output).
			WithQuiet(quiet)
	}

	if quiet {
		log.Info(runCtx.Context(), "step applied",
			ports.F("step", id.String()), ports.F("output", "suppressed"))
	} else {
		log.Info(runCtx.Context(), "step applied",
			ports.F("step", id.String()), ports.F("duration", duration))
	}

	return NewStepResult(id, StatusSatisfied, nil).
		WithDuration(duration).
		WithOutput(output).
		WithQuiet(quiet).
		WithChanged(true)
}

// runDiagnostic executes a read-only diagnostic step.
// Its result is always reported with changed=false, and an error degrades
// the status to unknown instead of failing the run.
func (s *Sequencer) runDiagnostic(runCtx RunContext, step Step, log ports.Logger) StepResult {
	id := step.ID()

	if runCtx.DryRun() {
		return NewStepResult(id, StatusSkipped, nil)
	}

	start := time.Now()
	err := step.Apply(runCtx)
	duration := time.Since(start)

	output, _ := runCtx.Output(id)

	if err != nil {
		log.Warn(runCtx.Context(), "diagnostic step errored",
			ports.F("step", id.String()), ports.F("error", err))
		return NewStepResult(id, StatusUnknown, err).
			WithDuration(duration).
			WithOutput(output)
	}

	return NewStepResult(id, StatusSatisfied, nil).
		WithDuration(duration).
		WithOutput(output)
}
