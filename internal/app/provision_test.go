package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/flowprep/internal/adapters/logging"
	"github.com/felixgeelhaar/flowprep/internal/adapters/postgres"
	"github.com/felixgeelhaar/flowprep/internal/domain/config"
	"github.com/felixgeelhaar/flowprep/internal/domain/provision"
	"github.com/felixgeelhaar/flowprep/internal/ports"
	"github.com/felixgeelhaar/flowprep/internal/testutil/mocks"
)

// closingAdmin adapts the database mock to the AdminConn interface.
type closingAdmin struct {
	*mocks.DatabaseAdmin
}

func (closingAdmin) Close() error { return nil }

func writeConfig(t *testing.T, installPath string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "flowprep.yaml")
	content := `profile: quantum-lab
install_path: ` + installPath + `
host: localhost
database:
  admin_user: postgres
  password: secret
enable_stats_extension: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// registerVerdi registers the command results for a host without a
// registered computer.
func registerVerdi(runner *mocks.CommandRunner, installPath string) {
	runner.AddResult("verdi", []string{
		"quicksetup",
		"--non-interactive",
		"--profile", "quantum-lab",
		"--db-host", "localhost",
		"--db-port", "5432",
		"--db-name", "quantum-lab",
		"--db-username", "quantum-lab",
		"--db-password", "secret",
		"--repository", filepath.Join(installPath, "repository-quantum-lab"),
	}, ports.CommandResult{ExitCode: 0, Stdout: "Success: created new profile\n"})

	runner.AddResult("verdi", []string{"computer", "show", "localhost"},
		ports.CommandResult{ExitCode: 1, Stderr: "not found\n"})

	runner.AddResult("verdi", []string{
		"computer", "setup",
		"--non-interactive",
		"--label", "localhost",
		"--hostname", "localhost",
		"--transport", "core.local",
		"--scheduler", "core.direct",
		"--work-dir", filepath.Join(installPath, "scratch"),
	}, ports.CommandResult{ExitCode: 0})

	runner.AddResult("verdi", []string{
		"computer", "configure", "core.local", "localhost",
		"--non-interactive",
		"--safe-interval", "0",
	}, ports.CommandResult{ExitCode: 0})

	runner.AddResult("verdi", []string{"status"},
		ports.CommandResult{ExitCode: 0, Stdout: "database: connected\n"})
}

func newTestApp(out *bytes.Buffer, runner *mocks.CommandRunner, fs *mocks.FileSystem, admin *mocks.DatabaseAdmin) *Flowprep {
	return New(out, logging.NewNopLogger()).
		WithCommandRunner(runner).
		WithFileSystem(fs).
		WithAdminOpener(func(_ context.Context, _ postgres.Config) (AdminConn, error) {
			return closingAdmin{admin}, nil
		})
}

func TestApply_FreshTarget(t *testing.T) {
	installPath := "/srv/flowprep"
	configPath := writeConfig(t, installPath)

	runner := mocks.NewCommandRunner()
	registerVerdi(runner, installPath)
	fs := mocks.NewFileSystem()
	admin := mocks.NewDatabaseAdmin()

	var out bytes.Buffer
	app := newTestApp(&out, runner, fs, admin)

	result, err := app.Apply(context.Background(), configPath)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if !result.Completed() {
		t.Fatalf("Apply() state = %v, want completed (failure: %v)", result.State, result.Failure)
	}
	// create db, extension, profile, probe, setup, configure, status
	if len(result.Results) != 7 {
		t.Fatalf("Apply() results = %d, want 7", len(result.Results))
	}
	if !result.Changed() {
		t.Error("fresh target must report changes")
	}
	if admin.CreateDatabaseCalls != 1 || admin.CreateExtensionCalls != 1 {
		t.Errorf("admin calls = %d/%d, want 1/1",
			admin.CreateDatabaseCalls, admin.CreateExtensionCalls)
	}
	if !fs.Exists("/srv/flowprep/.quantum-lab.profile") {
		t.Error("profile marker should be written")
	}
	if !strings.Contains(result.Diagnostic, "database: connected") {
		t.Errorf("Diagnostic = %q, want status output", result.Diagnostic)
	}
}

func TestApply_SecondRunIsQuiescent(t *testing.T) {
	installPath := "/srv/flowprep"
	configPath := writeConfig(t, installPath)

	runner := mocks.NewCommandRunner()
	registerVerdi(runner, installPath)
	fs := mocks.NewFileSystem()
	admin := mocks.NewDatabaseAdmin()

	var out bytes.Buffer
	app := newTestApp(&out, runner, fs, admin)

	if result, err := app.Apply(context.Background(), configPath); err != nil || !result.Completed() {
		t.Fatalf("first Apply() = %v, %v", result.State, err)
	}

	// The computer now exists, so the probe succeeds.
	runner.AddResult("verdi", []string{"computer", "show", "localhost"},
		ports.CommandResult{ExitCode: 0, Stdout: "Computer localhost\n"})

	result, err := app.Apply(context.Background(), configPath)
	if err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}

	if !result.Completed() {
		t.Fatalf("second Apply() state = %v (failure: %v)", result.State, result.Failure)
	}
	if result.Changed() {
		t.Error("second run must not change anything")
	}
	if admin.CreateDatabaseCalls != 1 {
		t.Errorf("CreateDatabaseCalls = %d, want 1 across both runs", admin.CreateDatabaseCalls)
	}
	if got := runner.CallCount("verdi"); got != 7 {
		// First run: quicksetup, probe, setup, configure, status.
		// Second run: probe, status.
		t.Errorf("verdi invocations = %d, want 7 across both runs", got)
	}
}

func TestApply_DryRunAppliesNothing(t *testing.T) {
	installPath := "/srv/flowprep"
	configPath := writeConfig(t, installPath)

	runner := mocks.NewCommandRunner()
	// Dry run still probes existence during guard checks.
	runner.AddResult("verdi", []string{"computer", "show", "localhost"},
		ports.CommandResult{ExitCode: 1})
	fs := mocks.NewFileSystem()
	admin := mocks.NewDatabaseAdmin()

	var out bytes.Buffer
	app := newTestApp(&out, runner, fs, admin).WithDryRun(true)

	result, err := app.Apply(context.Background(), configPath)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if !result.Completed() {
		t.Fatalf("Apply() state = %v (failure: %v)", result.State, result.Failure)
	}
	if result.Changed() {
		t.Error("dry run must not change anything")
	}
	if admin.CreateDatabaseCalls != 0 || admin.CreateExtensionCalls != 0 {
		t.Error("dry run must not touch the database server")
	}
	if fs.Exists("/srv/flowprep/.quantum-lab.profile") {
		t.Error("dry run must not write the profile marker")
	}
}

func TestApply_HaltsOnDatabaseFailure(t *testing.T) {
	installPath := "/srv/flowprep"
	configPath := writeConfig(t, installPath)

	runner := mocks.NewCommandRunner()
	fs := mocks.NewFileSystem()
	admin := mocks.NewDatabaseAdmin()
	admin.CreateDatabaseErr = errors.New("permission denied")

	var out bytes.Buffer
	app := newTestApp(&out, runner, fs, admin)

	result, err := app.Apply(context.Background(), configPath)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if !result.Failed() {
		t.Fatalf("Apply() state = %v, want failed", result.State)
	}
	if result.Failure == nil || result.Failure.StepID.String() != "database:create:quantum-lab" {
		t.Errorf("Failure = %v, want the create step", result.Failure)
	}
	// The run halts before any CLI step executes.
	if got := runner.CallCount("verdi"); got != 0 {
		t.Errorf("verdi invocations = %d, want 0 after fatal failure", got)
	}
}

func TestApply_ConfigError(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(&out, mocks.NewCommandRunner(), mocks.NewFileSystem(), mocks.NewDatabaseAdmin())

	_, err := app.Apply(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Apply() should fail for a missing config")
	}

	var userErr *config.UserError
	if !errors.As(err, &userErr) || userErr.Code != config.ErrCodeConfigNotFound {
		t.Errorf("error = %v, want CONFIG_NOT_FOUND", err)
	}
}

func TestPlan_PreviewsSteps(t *testing.T) {
	installPath := "/srv/flowprep"
	configPath := writeConfig(t, installPath)

	runner := mocks.NewCommandRunner()
	runner.AddResult("verdi", []string{"computer", "show", "localhost"},
		ports.CommandResult{ExitCode: 1})
	fs := mocks.NewFileSystem()
	admin := mocks.NewDatabaseAdmin()
	admin.AddDatabase("quantum-lab")

	var out bytes.Buffer
	app := newTestApp(&out, runner, fs, admin)

	plan, err := app.Plan(context.Background(), configPath)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if plan.Len() != 7 {
		t.Fatalf("Plan() len = %d, want 7", plan.Len())
	}

	summary := plan.Summary()
	if summary.Satisfied != 1 {
		t.Errorf("Satisfied = %d, want 1 (database already exists)", summary.Satisfied)
	}

	app.PrintPlan(plan)
	if !strings.Contains(out.String(), "database:create:quantum-lab") {
		t.Errorf("PrintPlan() output missing step ID:\n%s", out.String())
	}
}

func TestStatus_ReturnsReport(t *testing.T) {
	installPath := "/srv/flowprep"
	configPath := writeConfig(t, installPath)

	runner := mocks.NewCommandRunner()
	runner.AddResult("verdi", []string{"status"},
		ports.CommandResult{ExitCode: 3, Stdout: "database: connected\n", Stderr: "daemon: stopped\n"})

	var out bytes.Buffer
	app := newTestApp(&out, runner, mocks.NewFileSystem(), mocks.NewDatabaseAdmin())

	report, err := app.Status(context.Background(), configPath)
	if err != nil {
		t.Fatalf("Status() error = %v (non-zero exit is part of the report)", err)
	}
	if !strings.Contains(report, "database: connected") || !strings.Contains(report, "daemon: stopped") {
		t.Errorf("Status() = %q, want full report", report)
	}

	app.PrintStatus(report)
	if !strings.Contains(out.String(), "daemon: stopped") {
		t.Errorf("PrintStatus() output missing report:\n%s", out.String())
	}
}

func TestAdminConfig_ServiceLookup(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.AddFile("/etc/pg_service.conf", []byte("[admin]\nhost = db.internal\nport = 5433\nuser = admin\npassword = hunter2\n"))

	app := New(&bytes.Buffer{}, logging.NewNopLogger()).WithFileSystem(fs)

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Host:        "localhost",
			Port:        5432,
			Service:     "admin",
			ServiceFile: "/etc/pg_service.conf",
		},
	}

	pgCfg, err := app.adminConfig(cfg)
	if err != nil {
		t.Fatalf("adminConfig() error = %v", err)
	}
	if pgCfg.Host != "db.internal" || pgCfg.Port != 5433 {
		t.Errorf("adminConfig() = %+v, want service overrides applied", pgCfg)
	}
	if pgCfg.User != "admin" || pgCfg.Password != "hunter2" {
		t.Errorf("adminConfig() credentials = %s, want service credentials", pgCfg.User)
	}
}

func TestAdminConfig_URLWins(t *testing.T) {
	app := New(&bytes.Buffer{}, logging.NewNopLogger())

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			AdminURL: "postgres://postgres:pw@localhost:5432/postgres",
			Host:     "ignored",
		},
	}

	pgCfg, err := app.adminConfig(cfg)
	if err != nil {
		t.Fatalf("adminConfig() error = %v", err)
	}
	if pgCfg.URL != cfg.Database.AdminURL {
		t.Errorf("adminConfig() URL = %q", pgCfg.URL)
	}
	if pgCfg.Host != "" {
		t.Error("explicit admin_url must bypass the field assembly")
	}
}

// Second-run semantics for the probe-guarded steps: a probe that ran
// before setup decides both setup and configure.
func TestApply_PriorComputerSkipsSetupAndConfigure(t *testing.T) {
	installPath := "/srv/flowprep"
	configPath := writeConfig(t, installPath)

	runner := mocks.NewCommandRunner()
	runner.AddResult("verdi", []string{"computer", "show", "localhost"},
		ports.CommandResult{ExitCode: 0, Stdout: "Computer localhost\n"})
	runner.AddResult("verdi", []string{"status"},
		ports.CommandResult{ExitCode: 0, Stdout: "all good\n"})

	fs := mocks.NewFileSystem()
	fs.AddFile("/srv/flowprep/.quantum-lab.profile", []byte("quantum-lab\n"))

	admin := mocks.NewDatabaseAdmin()
	admin.AddDatabase("quantum-lab")
	admin.AddExtension("quantum-lab", "pg_stat_statements")

	var out bytes.Buffer
	app := newTestApp(&out, runner, fs, admin)

	result, err := app.Apply(context.Background(), configPath)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if !result.Completed() || result.Changed() {
		t.Fatalf("Apply() = %v changed=%v, want quiescent completion", result.State, result.Changed())
	}
	// Only probe and status touch the CLI.
	if got := runner.CallCount("verdi"); got != 2 {
		t.Errorf("verdi invocations = %d, want 2", got)
	}

	for _, res := range result.Results {
		id := res.StepID().String()
		if id == "verdi:computer:setup:localhost" || id == "verdi:computer:configure:localhost" {
			if res.Status() != provision.StatusSatisfied || res.Changed() {
				t.Errorf("%s = %v changed=%v, want satisfied by probe evidence",
					id, res.Status(), res.Changed())
			}
		}
	}
}
