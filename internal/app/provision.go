// Package app wires the adapters and providers into the flowprep
// application.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/felixgeelhaar/flowprep/internal/adapters/command"
	"github.com/felixgeelhaar/flowprep/internal/adapters/filesystem"
	"github.com/felixgeelhaar/flowprep/internal/adapters/postgres"
	"github.com/felixgeelhaar/flowprep/internal/domain/config"
	"github.com/felixgeelhaar/flowprep/internal/domain/provision"
	"github.com/felixgeelhaar/flowprep/internal/ports"
	"github.com/felixgeelhaar/flowprep/internal/provider/database"
	"github.com/felixgeelhaar/flowprep/internal/provider/verdi"
	"github.com/felixgeelhaar/flowprep/internal/tui"
)

// DefaultServiceFile is the pg_service.conf location used when the
// configuration names a service without a file.
const DefaultServiceFile = "~/.pg_service.conf"

// AdminConn is the administrative database connection held open for the
// duration of one run.
type AdminConn interface {
	ports.DatabaseAdmin
	Close() error
}

// Flowprep is the main application orchestrator.
type Flowprep struct {
	loader   *config.Loader
	fs       ports.FileSystem
	runner   ports.CommandRunner
	logger   ports.Logger
	renderer *tui.Renderer
	out      io.Writer
	dryRun   bool

	// openAdmin dials the administrative database connection.
	openAdmin func(ctx context.Context, cfg postgres.Config) (AdminConn, error)
}

// New creates a new Flowprep application with real adapters.
func New(out io.Writer, logger ports.Logger) *Flowprep {
	return &Flowprep{
		loader:   config.NewLoader(),
		fs:       filesystem.NewRealFileSystem(),
		runner:   command.NewRealRunner(),
		logger:   logger,
		renderer: tui.NewRenderer(),
		out:      out,
		openAdmin: func(ctx context.Context, cfg postgres.Config) (AdminConn, error) {
			return postgres.Open(ctx, cfg)
		},
	}
}

// WithDryRun controls whether Apply reports changes without making them.
func (f *Flowprep) WithDryRun(dryRun bool) *Flowprep {
	f.dryRun = dryRun
	return f
}

// WithFileSystem replaces the filesystem adapter.
func (f *Flowprep) WithFileSystem(fs ports.FileSystem) *Flowprep {
	f.fs = fs
	return f
}

// WithCommandRunner replaces the command runner adapter.
func (f *Flowprep) WithCommandRunner(runner ports.CommandRunner) *Flowprep {
	f.runner = runner
	return f
}

// WithAdminOpener replaces the database connection factory.
func (f *Flowprep) WithAdminOpener(open func(ctx context.Context, cfg postgres.Config) (AdminConn, error)) *Flowprep {
	f.openAdmin = open
	return f
}

// Apply loads the configuration and runs the provisioning sequence.
func (f *Flowprep) Apply(ctx context.Context, configPath string) (provision.RunResult, error) {
	cfg, err := f.loader.Load(configPath)
	if err != nil {
		return provision.RunResult{}, err
	}

	admin, err := f.connect(ctx, cfg)
	if err != nil {
		return provision.RunResult{}, err
	}
	defer func() { _ = admin.Close() }()

	steps := f.buildSteps(cfg, admin)
	seq := provision.NewSequencer(f.logger).WithDryRun(f.dryRun)

	return seq.Run(ctx, steps), nil
}

// Plan loads the configuration and previews the provisioning sequence.
func (f *Flowprep) Plan(ctx context.Context, configPath string) (*provision.Plan, error) {
	cfg, err := f.loader.Load(configPath)
	if err != nil {
		return nil, err
	}

	admin, err := f.connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = admin.Close() }()

	steps := f.buildSteps(cfg, admin)

	plan, err := provision.NewPlanner().Plan(ctx, steps)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	return plan, nil
}

// Status runs only the read-only environment status query.
func (f *Flowprep) Status(ctx context.Context, configPath string) (string, error) {
	cfg, err := f.loader.Load(configPath)
	if err != nil {
		return "", err
	}

	step := verdi.NewStatusStep(f.verdiConfig(cfg), f.runner)
	runCtx := provision.NewRunContext(ctx)
	if err := step.Apply(runCtx); err != nil {
		return "", fmt.Errorf("status query: %w", err)
	}

	report, _ := runCtx.Output(step.ID())
	return report, nil
}

// PrintPlan writes a human-readable plan preview.
func (f *Flowprep) PrintPlan(plan *provision.Plan) {
	fmt.Fprint(f.out, f.renderer.RenderPlan(plan))
}

// PrintResults writes a human-readable run report.
func (f *Flowprep) PrintResults(result provision.RunResult) {
	fmt.Fprint(f.out, f.renderer.RenderResults(result))
}

// PrintStatus writes the environment status report.
func (f *Flowprep) PrintStatus(report string) {
	fmt.Fprint(f.out, f.renderer.RenderStatus(report))
}

// connect resolves the admin connection parameters and dials the server.
func (f *Flowprep) connect(ctx context.Context, cfg *config.Config) (AdminConn, error) {
	pgCfg, err := f.adminConfig(cfg)
	if err != nil {
		return nil, err
	}

	admin, err := f.openAdmin(ctx, pgCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database server: %w", err)
	}
	return admin, nil
}

// adminConfig assembles the administrative connection parameters. An
// explicit admin_url wins; otherwise a named pg_service.conf section is
// overlaid on the individual fields.
func (f *Flowprep) adminConfig(cfg *config.Config) (postgres.Config, error) {
	db := cfg.Database

	if db.AdminURL != "" {
		return postgres.Config{URL: db.AdminURL}, nil
	}

	pgCfg := postgres.Config{
		Host:     db.Host,
		Port:     db.Port,
		User:     db.AdminUser,
		Password: db.AdminPassword,
	}
	if pgCfg.User == "" {
		pgCfg.User = "postgres"
	}

	if db.Service != "" {
		path := db.ServiceFile
		if path == "" {
			path = ports.ExpandPath(DefaultServiceFile)
		}
		svc, err := postgres.LookupService(f.fs, path, db.Service)
		if err != nil {
			return postgres.Config{}, err
		}
		pgCfg = pgCfg.Merge(svc)
	}

	return pgCfg, nil
}

// buildSteps assembles the ordered provisioning sequence for one target.
func (f *Flowprep) buildSteps(cfg *config.Config, admin ports.DatabaseAdmin) []provision.Step {
	vCfg := f.verdiConfig(cfg)

	steps := []provision.Step{
		database.NewCreateDatabaseStep(cfg.Database.Name, cfg.Database.Owner, admin),
	}
	if cfg.EnableStatsExtension {
		steps = append(steps,
			database.NewCreateExtensionStep(cfg.Database.Name, "pg_stat_statements", admin))
	}

	steps = append(steps,
		verdi.NewProfileStep(vCfg, f.fs, f.runner),
		verdi.NewProbeComputerStep(vCfg, f.runner),
		verdi.NewComputerSetupStep(vCfg, f.runner),
		verdi.NewComputerConfigureStep(vCfg, f.runner),
		verdi.NewStatusStep(vCfg, f.runner),
	)

	return steps
}

// verdiConfig maps the run configuration onto the workflow-manager steps.
func (f *Flowprep) verdiConfig(cfg *config.Config) verdi.Config {
	return verdi.Config{
		Profile:     cfg.Profile,
		InstallPath: cfg.InstallPath,
		Host:        cfg.Host,
		DBHost:      cfg.Database.Host,
		DBPort:      cfg.Database.Port,
		DBName:      cfg.Database.Name,
		DBUser:      cfg.Database.User,
		DBPassword:  cfg.Database.Password,
	}
}
