package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/flowprep/internal/app"
	"github.com/felixgeelhaar/flowprep/internal/domain/config"
	"github.com/felixgeelhaar/flowprep/internal/domain/provision"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Provision the workflow environment",
	Long: `Apply runs the full provisioning sequence against the configured target.

This command:
1. Creates the backing database (and optional statistics extension)
2. Initializes the workflow profile
3. Registers and configures the local compute target
4. Reports the environment status

Steps whose end-state already exists are skipped, so apply is safe to
re-run. Use --dry-run to see what would happen without making changes.`,
	RunE: runApply,
}

var (
	applyConfigPath string
	applyDryRun     bool
)

// applyClient is the application surface the apply command needs.
type applyClient interface {
	Apply(ctx context.Context, configPath string) (provision.RunResult, error)
	PrintResults(result provision.RunResult)
}

var newApplyApp = func(out io.Writer, dryRun bool) applyClient {
	return app.New(out, newLogger()).WithDryRun(dryRun)
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringVarP(&applyConfigPath, "config", "c", config.DefaultFileName, "Path to flowprep.yaml")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Show what would be done without making changes")
}

func runApply(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	flowprep := newApplyApp(os.Stdout, applyDryRun)

	result, err := flowprep.Apply(ctx, applyConfigPath)
	if err != nil {
		return err
	}

	flowprep.PrintResults(result)

	if result.Failed() {
		if result.Failure != nil {
			return result.Failure
		}
		return errors.New("provisioning failed")
	}
	return nil
}
