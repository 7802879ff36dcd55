package verdi

import (
	"fmt"
	"strconv"

	"github.com/felixgeelhaar/flowprep/internal/domain/provision"
	"github.com/felixgeelhaar/flowprep/internal/ports"
)

// Probe results captured into the run context.
const (
	computerPresent = "present"
	computerAbsent  = "absent"
)

// probeStepID returns the ID of the computer probe for a host.
func probeStepID(host string) provision.StepID {
	return provision.MustNewStepID("verdi:computer:probe:" + host)
}

// ProfileStep initializes the workflow profile.
//
// The creation guard is a marker file under the install path: once the
// profile has been set up, re-runs skip the step without invoking the
// CLI. The setup command line carries the database password, so the step
// is quiet and its output is never logged.
type ProfileStep struct {
	cfg    Config
	id     provision.StepID
	fs     ports.FileSystem
	runner ports.CommandRunner
}

// NewProfileStep creates a new ProfileStep.
func NewProfileStep(cfg Config, fs ports.FileSystem, runner ports.CommandRunner) *ProfileStep {
	return &ProfileStep{
		cfg:    cfg,
		id:     provision.MustNewStepID("verdi:profile:" + cfg.Profile),
		fs:     fs,
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *ProfileStep) ID() provision.StepID {
	return s.id
}

// DependsOn returns the step dependencies.
func (s *ProfileStep) DependsOn() []provision.StepID {
	return []provision.StepID{provision.MustNewStepID("database:create:" + s.cfg.DBName)}
}

// Check determines if the profile marker already exists.
func (s *ProfileStep) Check(_ provision.RunContext) (provision.StepStatus, error) {
	if s.fs.Exists(s.cfg.MarkerPath()) {
		return provision.StatusSatisfied, nil
	}
	return provision.StatusNeedsApply, nil
}

// Apply runs profile setup and writes the marker on success.
func (s *ProfileStep) Apply(ctx provision.RunContext) error {
	if err := s.fs.MkdirAll(s.cfg.InstallPath, 0o750); err != nil {
		return fmt.Errorf("create install path: %w", err)
	}

	args := []string{
		"quicksetup",
		"--non-interactive",
		"--profile", s.cfg.Profile,
		"--db-host", s.cfg.DBHost,
		"--db-port", strconv.Itoa(s.cfg.DBPort),
		"--db-name", s.cfg.DBName,
		"--db-username", s.cfg.DBUser,
		"--db-password", s.cfg.DBPassword,
		"--repository", s.cfg.RepositoryPath(),
	}

	result, err := s.runner.Run(ctx.Context(), s.cfg.binary(), args...)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("%s quicksetup failed: %s", s.cfg.binary(), result.Stderr)
	}

	ctx.SetOutput(s.id, result.Combined())

	if err := s.fs.WriteFile(s.cfg.MarkerPath(), []byte(s.cfg.Profile+"\n"), 0o600); err != nil {
		return fmt.Errorf("write profile marker: %w", err)
	}
	return nil
}

// Quiet reports that this step's output must not be logged.
func (s *ProfileStep) Quiet() bool {
	return true
}

// ProbeComputerStep checks whether the target computer is registered.
//
// The probe command naturally fails when the computer is absent; that
// exit code is captured as evidence, never surfaced as an error. Both
// the setup and the configure step read this pre-setup evidence, so a
// computer that already existed before the run skips both.
type ProbeComputerStep struct {
	cfg    Config
	id     provision.StepID
	runner ports.CommandRunner
}

// NewProbeComputerStep creates a new ProbeComputerStep.
func NewProbeComputerStep(cfg Config, runner ports.CommandRunner) *ProbeComputerStep {
	return &ProbeComputerStep{
		cfg:    cfg,
		id:     probeStepID(cfg.Host),
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *ProbeComputerStep) ID() provision.StepID {
	return s.id
}

// DependsOn returns the step dependencies.
func (s *ProbeComputerStep) DependsOn() []provision.StepID {
	return []provision.StepID{provision.MustNewStepID("verdi:profile:" + s.cfg.Profile)}
}

// Check always reports needs-apply; the probe itself is the action.
func (s *ProbeComputerStep) Check(_ provision.RunContext) (provision.StepStatus, error) {
	return provision.StatusNeedsApply, nil
}

// Apply runs the probe and captures presence evidence.
func (s *ProbeComputerStep) Apply(ctx provision.RunContext) error {
	result, err := s.runner.Run(ctx.Context(), s.cfg.binary(), "computer", "show", s.cfg.Host)
	if err != nil {
		return err
	}

	if result.Success() {
		ctx.SetOutput(s.id, computerPresent)
	} else {
		ctx.SetOutput(s.id, computerAbsent)
	}
	return nil
}

// Diagnostic reports that the probe is read-only and cannot fail the run.
func (s *ProbeComputerStep) Diagnostic() bool {
	return true
}

// ComputerSetupStep registers the target computer.
type ComputerSetupStep struct {
	cfg    Config
	id     provision.StepID
	runner ports.CommandRunner
}

// NewComputerSetupStep creates a new ComputerSetupStep.
func NewComputerSetupStep(cfg Config, runner ports.CommandRunner) *ComputerSetupStep {
	return &ComputerSetupStep{
		cfg:    cfg,
		id:     provision.MustNewStepID("verdi:computer:setup:" + cfg.Host),
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *ComputerSetupStep) ID() provision.StepID {
	return s.id
}

// DependsOn returns the step dependencies.
func (s *ComputerSetupStep) DependsOn() []provision.StepID {
	return []provision.StepID{provision.MustNewStepID("verdi:profile:" + s.cfg.Profile)}
}

// Check reads the probe's captured evidence, falling back to running the
// probe command when no evidence was captured (e.g. during planning).
func (s *ComputerSetupStep) Check(ctx provision.RunContext) (provision.StepStatus, error) {
	return checkComputerProbe(ctx, s.cfg, s.runner)
}

// Apply registers the computer with a local transport.
func (s *ComputerSetupStep) Apply(ctx provision.RunContext) error {
	args := []string{
		"computer", "setup",
		"--non-interactive",
		"--label", s.cfg.Host,
		"--hostname", s.cfg.Host,
		"--transport", "core.local",
		"--scheduler", "core.direct",
		"--work-dir", s.cfg.WorkDirPath(),
	}

	result, err := s.runner.Run(ctx.Context(), s.cfg.binary(), args...)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("computer setup %s failed: %s", s.cfg.Host, result.Stderr)
	}

	ctx.SetOutput(s.id, result.Combined())
	return nil
}

// ComputerConfigureStep configures the registered computer's transport.
// It shares the setup step's probe guard: the evidence captured before
// setup ran decides whether configuration is needed.
type ComputerConfigureStep struct {
	cfg    Config
	id     provision.StepID
	runner ports.CommandRunner
}

// NewComputerConfigureStep creates a new ComputerConfigureStep.
func NewComputerConfigureStep(cfg Config, runner ports.CommandRunner) *ComputerConfigureStep {
	return &ComputerConfigureStep{
		cfg:    cfg,
		id:     provision.MustNewStepID("verdi:computer:configure:" + cfg.Host),
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *ComputerConfigureStep) ID() provision.StepID {
	return s.id
}

// DependsOn returns the step dependencies.
func (s *ComputerConfigureStep) DependsOn() []provision.StepID {
	return []provision.StepID{provision.MustNewStepID("verdi:computer:setup:" + s.cfg.Host)}
}

// Check reads the probe's captured evidence, like the setup step.
func (s *ComputerConfigureStep) Check(ctx provision.RunContext) (provision.StepStatus, error) {
	return checkComputerProbe(ctx, s.cfg, s.runner)
}

// Apply configures the local transport.
func (s *ComputerConfigureStep) Apply(ctx provision.RunContext) error {
	args := []string{
		"computer", "configure", "core.local", s.cfg.Host,
		"--non-interactive",
		"--safe-interval", "0",
	}

	result, err := s.runner.Run(ctx.Context(), s.cfg.binary(), args...)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("computer configure %s failed: %s", s.cfg.Host, result.Stderr)
	}

	ctx.SetOutput(s.id, result.Combined())
	return nil
}

// checkComputerProbe resolves the shared probe guard.
func checkComputerProbe(ctx provision.RunContext, cfg Config, runner ports.CommandRunner) (provision.StepStatus, error) {
	if evidence, ok := ctx.Output(probeStepID(cfg.Host)); ok {
		if evidence == computerPresent {
			return provision.StatusSatisfied, nil
		}
		return provision.StatusNeedsApply, nil
	}

	result, err := runner.Run(ctx.Context(), cfg.binary(), "computer", "show", cfg.Host)
	if err != nil {
		return provision.StatusUnknown, err
	}
	if result.Success() {
		return provision.StatusSatisfied, nil
	}
	return provision.StatusNeedsApply, nil
}

// StatusStep is the final read-only status query. Its output is surfaced
// for operator inspection; it always runs and can never fail the run.
type StatusStep struct {
	cfg    Config
	id     provision.StepID
	runner ports.CommandRunner
}

// NewStatusStep creates a new StatusStep.
func NewStatusStep(cfg Config, runner ports.CommandRunner) *StatusStep {
	return &StatusStep{
		cfg:    cfg,
		id:     provision.MustNewStepID("verdi:status"),
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *StatusStep) ID() provision.StepID {
	return s.id
}

// DependsOn returns the step dependencies.
func (s *StatusStep) DependsOn() []provision.StepID {
	return nil
}

// Check always reports needs-apply; the query always runs.
func (s *StatusStep) Check(_ provision.RunContext) (provision.StepStatus, error) {
	return provision.StatusNeedsApply, nil
}

// Apply runs the status query and captures its output. A non-zero exit
// is part of the report, not a failure.
func (s *StatusStep) Apply(ctx provision.RunContext) error {
	result, err := s.runner.Run(ctx.Context(), s.cfg.binary(), "status")
	if err != nil {
		return err
	}

	ctx.SetOutput(s.id, result.Combined())
	return nil
}

// Diagnostic reports that the status query is purely informational.
func (s *StatusStep) Diagnostic() bool {
	return true
}

// Ensure the steps implement the provision interfaces.
var (
	_ provision.QuietStep      = (*ProfileStep)(nil)
	_ provision.DiagnosticStep = (*ProbeComputerStep)(nil)
	_ provision.Step           = (*ComputerSetupStep)(nil)
	_ provision.Step           = (*ComputerConfigureStep)(nil)
	_ provision.DiagnosticStep = (*StatusStep)(nil)
)
